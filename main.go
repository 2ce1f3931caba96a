package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	auth "Petronorm/internal/auth"
	cipw "Petronorm/internal/calc/cipw"
	importer "Petronorm/internal/calc/importer"
	report "Petronorm/internal/calc/report"
	chem "Petronorm/internal/chem"
	config "Petronorm/internal/config"
	metrics "Petronorm/internal/metrics"
	repo "Petronorm/internal/repo"
	runs "Petronorm/internal/runs"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func openRepo(ctx context.Context, cfg *config.Config) (*repo.SQLRepository, error) {
	if cfg.DatabaseDriver == config.DriverPostgres {
		return repo.OpenPostgres(ctx, cfg.DatabaseURL)
	}
	return repo.OpenSQLite(ctx, cfg.SQLitePath)
}

func HandleList(mux *mux.Router, cfg *config.Config, store *repo.SQLRepository, m *metrics.Metrics) error {
	ref := chem.NewReference()
	engine, err := cipw.NewEngine(ref,
		cipw.WithWorkers(cfg.NormWorkers),
		cipw.WithObserver(m.ObserveSample),
	)
	if err != nil {
		return err
	}

	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: store, Insecure: !cfg.TLS()}
	refH := &chem.Handler{Ref: ref}
	normH := &cipw.Handler{Engine: engine, Runs: store, Defaults: cfg.Norm}
	importH := &importer.Handler{Norm: normH, Defaults: cfg.Norm}
	runsH := &runs.Handler{Repo: store}
	reportH := &report.Handler{Engine: engine, Runs: runsH, Defaults: cfg.Norm}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	mux.Use(m.Middleware)
	mux.Handle("/metrics", m.Handler()).Methods("GET")

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")
	api.HandleFunc("/reference/oxides", refH.Oxides).Methods("GET")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/tools/cipw/calc", normH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/cipw/import", importH.Upload).Methods("POST")
	secureApi.HandleFunc("/tools/cipw/report/pdf", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/tools/cipw/export/xlsx", reportH.Export).Methods("POST")

	secureApi.HandleFunc("/runs", runsH.List).Methods("GET")
	secureApi.HandleFunc("/runs/{id}", runsH.Get).Methods("GET")
	secureApi.HandleFunc("/runs/{id}", runsH.Delete).Methods("DELETE")
	secureApi.HandleFunc("/runs/{id}/report.pdf", reportH.RunPDF).Methods("GET")
	secureApi.HandleFunc("/runs/{id}/export.xlsx", reportH.RunXLSX).Methods("GET")
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	store, err := openRepo(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()

	mux := mux.NewRouter()
	if err := HandleList(mux, cfg, store, metrics.New()); err != nil {
		log.Fatal(err)
	}
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.Addr)
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")

	wg.Wait()
}
