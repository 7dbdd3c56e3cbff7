package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"viral-game-service/internal/app"
	"viral-game-service/internal/domain"
	"viral-game-service/internal/event"
	pgloader "viral-game-service/internal/infra/postgres"
	pgmigrations "viral-game-service/internal/infra/postgres/migrations"
	infraredis "viral-game-service/internal/infra/redis"
)

func TestPlayThroughEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedGame(t, ctx, pgURL, sampleGame())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewContentLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	contentRepo := infraredis.NewContentRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewGameService(sessionStore, contentRepo)

	session, err := service.Start(ctx, "s1", "study-room")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	defer service.End("s1")

	updates, cancel := session.Subscribe()
	defer cancel()

	session.StartMinigame("")
	events := drainEvents(updates)
	if len(events) != 2 || events[0].Type != "gameStatus" || events[1].Type != "question" {
		t.Fatalf("expected status and question, got %v", typesOf(events))
	}

	shown := events[1].Payload.(event.QuestionShown)
	correct := -1
	for i, opt := range shown.Options {
		if opt == "Periksa sumbernya" {
			correct = i
		}
	}
	if correct < 0 {
		t.Fatalf("correct option missing from %v", shown.Options)
	}

	session.SelectOption(correct)
	session.Submit()
	session.NextQuestion()

	events = drainEvents(updates)
	var summary *domain.Summary
	for _, ev := range events {
		if ev.Type == "quizFinished" {
			s := ev.Payload.(event.QuizFinished).Summary
			summary = &s
		}
	}
	if summary == nil {
		t.Fatalf("expected quiz to finish, got %v", typesOf(events))
	}
	if summary.Score != "1/1" || !summary.AllCorrect {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func drainEvents(ch <-chan app.Event) []app.Event {
	var events []app.Event
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func typesOf(events []app.Event) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "game", "POSTGRES_PASSWORD": "gamepass", "POSTGRES_DB": "gamedb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://game:gamepass@%s:%s/gamedb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedGame(t *testing.T, ctx context.Context, dsn string, content domain.Content) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO games (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, content.GameID, string(data)); err != nil {
		t.Fatalf("insert game: %v", err)
	}
}

func sampleGame() domain.Content {
	return domain.Content{
		GameID: "study-room",
		Questions: []domain.Question{
			{
				ID:                   "q1",
				Type:                 domain.MultipleChoice,
				Prompt:               "Apa langkah pertama saat menerima kabar mencurigakan?",
				Options:              []string{"Langsung bagikan", "Periksa sumbernya", "Abaikan saja"},
				CorrectIndex:         1,
				CorrectExplanation:   "Benar, selalu periksa sumbernya.",
				IncorrectExplanation: "Periksa dulu sumbernya sebelum bertindak.",
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
