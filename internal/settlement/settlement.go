// Package settlement nets a trip's expenses into per-participant balances
// and a short list of peer-to-peer transfers that clears them.
package settlement

import (
	"math"
	"sort"

	"github.com/splitplan/splitplan/internal/models"
)

// dust is the threshold below which a remaining balance counts as settled.
// It absorbs float accumulation noise from repeated equal splits.
const dust = 0.01

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ComputeBalances returns each active participant's net balance in the trip
// base currency. Positive means the participant is owed money, negative
// means they owe.
//
// Split policy: every expense is divided equally among all active
// participants of the trip, payer included, regardless of who consumed it.
// The payer is credited the full normalized amount. A payer who has since
// been deactivated still splits like everyone else historically, but their
// credit is dropped along with their share since they are no longer part of
// the settlement round.
func ComputeBalances(participants []models.Participant, expenses []models.Expense) map[string]float64 {
	balances := make(map[string]float64)
	for _, p := range participants {
		if p.Active {
			balances[p.ID] = 0
		}
	}
	if len(balances) == 0 {
		return balances
	}

	share := float64(len(balances))
	for _, exp := range expenses {
		if _, ok := balances[exp.PayerID]; ok {
			balances[exp.PayerID] += exp.NormalizedAmount
		}
		split := exp.NormalizedAmount / share
		for id := range balances {
			balances[id] -= split
		}
	}
	return balances
}

type party struct {
	id     string
	amount float64 // always positive: debt owed or credit due
}

// Settle converts net balances into transfers using greedy largest-first
// matching: the biggest debtor pays the biggest creditor until one side is
// exhausted. The result is deterministic for a given balance set but is not
// guaranteed to be the theoretical minimum number of transfers.
func Settle(balances map[string]float64) []models.Transfer {
	var debtors, creditors []party
	for id, bal := range balances {
		bal = round2(bal)
		switch {
		case bal < -dust:
			debtors = append(debtors, party{id: id, amount: -bal})
		case bal > dust:
			creditors = append(creditors, party{id: id, amount: bal})
		}
	}

	byAmountDesc := func(parties []party) func(i, j int) bool {
		return func(i, j int) bool {
			if parties[i].amount != parties[j].amount {
				return parties[i].amount > parties[j].amount
			}
			return parties[i].id < parties[j].id
		}
	}
	sort.Slice(debtors, byAmountDesc(debtors))
	sort.Slice(creditors, byAmountDesc(creditors))

	var transfers []models.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := math.Min(debtors[i].amount, creditors[j].amount)
		if amount > 0 {
			transfers = append(transfers, models.Transfer{
				DebtorID:   debtors[i].id,
				CreditorID: creditors[j].id,
				Amount:     round2(amount),
			})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount < dust {
			i++
		}
		if creditors[j].amount < dust {
			j++
		}
	}
	return transfers
}
