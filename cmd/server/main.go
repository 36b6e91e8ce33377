package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/splitplan/splitplan/internal/auth"
	"github.com/splitplan/splitplan/internal/config"
	"github.com/splitplan/splitplan/internal/currency"
	"github.com/splitplan/splitplan/internal/middleware"
	"github.com/splitplan/splitplan/internal/notify"
	"github.com/splitplan/splitplan/internal/service"
	"github.com/splitplan/splitplan/internal/storage/sqlite"
	"github.com/splitplan/splitplan/pkg/api/jsoncodec"
	"github.com/splitplan/splitplan/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	rateProvider := currency.NewHTTPProvider(cfg.RateAPIURL, cfg.RateTimeout)
	converter := currency.NewConverter(rateProvider, cfg.RateCacheTTL)

	opts := []connect.HandlerOption{
		connect.WithCodec(jsoncodec.New()),
		connect.WithInterceptors(
			middleware.RequireAuth(jwtManager,
				service.AccountRegisterProcedure,
				service.AccountLoginProcedure,
			),
			middleware.LoggingInterceptor(),
			middleware.MetricsInterceptor(),
		),
	}

	mux := http.NewServeMux()

	accountPath, accountHandler := service.NewAccountServiceHandler(
		service.NewAccountService(authenticator, jwtManager), opts...)
	mux.Handle(accountPath, accountHandler)

	tripPath, tripHandler := service.NewTripServiceHandler(
		service.NewTripService(store, notify.LogNotifier{}, cfg.MaxVoteScore), opts...)
	mux.Handle(tripPath, tripHandler)

	expensePath, expenseHandler := service.NewExpenseServiceHandler(
		service.NewExpenseService(store, converter), opts...)
	mux.Handle(expensePath, expenseHandler)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(corsMiddleware(mux), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Connect server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
