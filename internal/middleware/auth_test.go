package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/splitplan/splitplan/internal/auth"
	"github.com/splitplan/splitplan/internal/models"
	"github.com/splitplan/splitplan/pkg/api/jsoncodec"
)

type whoAmIRequest struct{}

type whoAmIResponse struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

const (
	whoAmIProcedure = "/splitplan.v1.TestService/WhoAmI"
	openProcedure   = "/splitplan.v1.TestService/Open"
)

// newAuthTestServer serves two procedures through RequireAuth, one exempt,
// both echoing the identity the interceptor placed in the context.
func newAuthTestServer(t *testing.T, jwtManager *auth.JWTManager) *httptest.Server {
	t.Helper()

	echo := func(ctx context.Context, req *connect.Request[whoAmIRequest]) (*connect.Response[whoAmIResponse], error) {
		return connect.NewResponse(&whoAmIResponse{
			AccountID: GetAccountID(ctx),
			Email:     GetEmail(ctx),
		}), nil
	}

	opts := []connect.HandlerOption{
		connect.WithCodec(jsoncodec.New()),
		connect.WithInterceptors(RequireAuth(jwtManager, openProcedure)),
	}
	mux := http.NewServeMux()
	mux.Handle(whoAmIProcedure, connect.NewUnaryHandler(whoAmIProcedure, echo, opts...))
	mux.Handle(openProcedure, connect.NewUnaryHandler(openProcedure, echo, opts...))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newAuthTestClient(server *httptest.Server, procedure string) *connect.Client[whoAmIRequest, whoAmIResponse] {
	return connect.NewClient[whoAmIRequest, whoAmIResponse](
		http.DefaultClient,
		server.URL+procedure,
		connect.WithCodec(jsoncodec.New()),
	)
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-key-for-unit-tests", time.Hour)
	server := newAuthTestServer(t, jwtManager)
	ctx := context.Background()

	account := &models.Account{ID: "acct-123", Email: "alice@example.com"}
	token, err := jwtManager.Generate(account)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	t.Run("exempt procedure needs no token", func(t *testing.T) {
		client := newAuthTestClient(server, openProcedure)
		resp, err := client.CallUnary(ctx, connect.NewRequest(&whoAmIRequest{}))
		if err != nil {
			t.Fatalf("call failed: %v", err)
		}
		if resp.Msg.AccountID != "" {
			t.Errorf("account = %q, want empty pre-auth", resp.Msg.AccountID)
		}
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		client := newAuthTestClient(server, whoAmIProcedure)
		_, err := client.CallUnary(ctx, connect.NewRequest(&whoAmIRequest{}))
		if connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("code = %v, want unauthenticated", connect.CodeOf(err))
		}
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		client := newAuthTestClient(server, whoAmIProcedure)
		req := connect.NewRequest(&whoAmIRequest{})
		req.Header().Set("Authorization", "Token abc")
		if _, err := client.CallUnary(ctx, req); connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("code = %v, want unauthenticated", connect.CodeOf(err))
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		client := newAuthTestClient(server, whoAmIProcedure)
		req := connect.NewRequest(&whoAmIRequest{})
		req.Header().Set("Authorization", "Bearer not-a-jwt")
		if _, err := client.CallUnary(ctx, req); connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("code = %v, want unauthenticated", connect.CodeOf(err))
		}
	})

	t.Run("valid token reaches the handler with identity", func(t *testing.T) {
		client := newAuthTestClient(server, whoAmIProcedure)
		req := connect.NewRequest(&whoAmIRequest{})
		req.Header().Set("Authorization", "Bearer "+token)
		resp, err := client.CallUnary(ctx, req)
		if err != nil {
			t.Fatalf("call failed: %v", err)
		}
		if resp.Msg.AccountID != "acct-123" || resp.Msg.Email != "alice@example.com" {
			t.Errorf("identity = %+v, want acct-123/alice@example.com", resp.Msg)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expired := auth.NewJWTManager("test-secret-key-for-unit-tests", -time.Minute)
		staleToken, err := expired.Generate(account)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		client := newAuthTestClient(server, whoAmIProcedure)
		req := connect.NewRequest(&whoAmIRequest{})
		req.Header().Set("Authorization", "Bearer "+staleToken)
		if _, err := client.CallUnary(ctx, req); connect.CodeOf(err) != connect.CodeUnauthenticated {
			t.Errorf("code = %v, want unauthenticated", connect.CodeOf(err))
		}
	})
}
