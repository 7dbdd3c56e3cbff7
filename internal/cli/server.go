package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"viral-game-service/internal/app"
	"viral-game-service/internal/config"
	"viral-game-service/internal/domain"
	fileloader "viral-game-service/internal/infra/file"
	"viral-game-service/internal/infra/memory"
	pgloader "viral-game-service/internal/infra/postgres"
	redisinfra "viral-game-service/internal/infra/redis"
	transport "viral-game-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.ContentLoader = memory.NewStaticContentLoader(sampleGames())
	if pool != nil {
		loader = pgloader.NewContentLoader(pool)
	} else if cfg.Content.Dir != "" {
		loader = fileloader.NewContentLoader(cfg.Content.Dir)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var contentRepo app.ContentRepository
	if redisClient != nil {
		contentRepo = redisinfra.NewContentRepository(redisClient, loader, contentTTL)
	} else {
		contentRepo = memory.NewContentRepository(loader, contentTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}
	service := app.NewGameService(store, contentRepo)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting game service on :%s", finalPort)
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

// sampleGames provides a minimal playable game; swap the loader for the YAML
// or Postgres one in production.
func sampleGames() map[string]domain.Content {
	return map[string]domain.Content{
		"study-room": {
			GameID: "study-room",
			Sequences: []domain.DialogueSequence{
				{
					ID: "intro",
					Lines: []domain.DialogueLine{
						{Speaker: "Aluna", Text: "Kita cek dulu apakah berita ini asli.", Portrait: "aluna_curious"},
						{Speaker: "Kayana", Text: "Ayo mulai dari sumbernya!", Portrait: "kayana_happy"},
					},
				},
				{
					ID: "quiz-success",
					Lines: []domain.DialogueLine{
						{Speaker: "Aluna", Text: "Hebat! Semua jawabanmu benar.", Portrait: "aluna_happy"},
					},
				},
				{
					ID: "quiz-failed",
					Lines: []domain.DialogueLine{
						{Speaker: "Aluna", Text: "Belum semua benar. Coba lagi ya!", Portrait: "aluna_sad"},
					},
				},
			},
			Questions: []domain.Question{
				{
					ID:     "q1",
					Type:   domain.MultipleChoice,
					Prompt: "Apa langkah pertama sebelum membagikan berita?",
					Options: []string{
						"Langsung bagikan ke grup keluarga",
						"Periksa sumber dan tanggal beritanya",
						"Lihat jumlah like dan share",
					},
					CorrectIndex:         1,
					CorrectExplanation:   "Benar! Sumber dan konteks waktu adalah hal pertama yang harus dicek.",
					IncorrectExplanation: "Popularitas bukan bukti kebenaran; cek sumber dan tanggalnya dulu.",
				},
			},
			SuccessSequence: "quiz-success",
			FailureSequence: "quiz-failed",
		},
	}
}
