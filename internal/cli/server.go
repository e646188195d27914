package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"ramadan-quiz-service/internal/app"
	"ramadan-quiz-service/internal/config"
	filestore "ramadan-quiz-service/internal/infra/file"
	pgstore "ramadan-quiz-service/internal/infra/postgres"
	redisstore "ramadan-quiz-service/internal/infra/redis"
	transport "ramadan-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "3000"
	}

	// Backend precedence: Postgres, then Redis, then the flat file.
	var store app.StateStore
	switch {
	case cfg.Storage.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Storage.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewStore(pool)
		log.Printf("using postgres state store")
	case cfg.Storage.Redis.Addr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		store = redisstore.NewStore(client)
		log.Printf("using redis state store")
	default:
		store = filestore.NewStore(cfg.Storage.File)
		log.Printf("using file state store at %s", cfg.Storage.File)
	}

	service := app.NewQuizService(ctx, store, cfg.Admin.Email)
	api := transport.NewAPIHandler(service)
	feed := transport.NewStatsFeed(service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	api.Register(mux)
	mux.HandleFunc("GET /ws/stats", feed.ServeWS)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      cors(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
