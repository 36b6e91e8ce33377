// Package models defines the core domain models for SplitPlan.
//
// # Models
//
//   - Account: registered login identity (email + password hash)
//   - Trip: the shared context; owns participants, proposals and expenses
//   - Participant: a person within one trip, optionally linked to an Account
//   - Proposal: a candidate destination subject to voting
//   - Vote: one participant's score for one proposal
//   - Expense: money paid by a participant, normalized to the trip currency
//   - Transfer: a derived peer-to-peer settlement payment (never persisted)
//
// # Design Principles
//
// 1. **No object graphs**: relationships are ID strings; the storage layer
// exposes explicit queries (VotesByTrip, ExpensesByTrip) instead of
// back-populated lists.
// 2. **Soft removal**: a Participant referenced by a vote or expense is only
// ever deactivated, so historical records stay resolvable.
// 3. **Derived money is recomputed**: transfers are always recalculated from
// the current expense set, never stored.
package models
