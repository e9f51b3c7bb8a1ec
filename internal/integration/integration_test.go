package integration

import (
	"context"
	"database/sql"
	"errors"
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
	"trivia-party-service/internal/app"
	"trivia-party-service/internal/domain"
	pgarchive "trivia-party-service/internal/infra/postgres"
	pgmigrations "trivia-party-service/internal/infra/postgres/migrations"
	infraredis "trivia-party-service/internal/infra/redis"
	"trivia-party-service/internal/quizgen"
	"trivia-party-service/internal/timer"
)

func TestGameAgainstPostgresAndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	archive := pgarchive.NewQuizArchive(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	clock := timer.NewManual(time.Unix(1_700_000_000, 0))
	games := infraredis.NewGameStore(redisClient, 5*time.Minute)
	service := app.NewGameService(
		games,
		infraredis.NewQuizRepository(redisClient, archive, 5*time.Minute),
		quizgen.NewStatic(quizgen.SampleQuestions()),
		app.Config{Clock: clock, JoinDelay: -1, Seed: 11},
	)

	host := service.NewGame()
	if err := service.OpenSetup(ctx, host); err != nil {
		t.Fatalf("open setup: %v", err)
	}
	if err := service.CreateQuiz(ctx, host, "General knowledge", 3); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	pin := host.PIN()

	stored, err := archive.LoadQuiz(ctx, pin)
	if err != nil {
		t.Fatalf("expected quiz archived: %v", err)
	}
	if stored.Topic != "General knowledge" || len(stored.Questions) != 3 {
		t.Fatalf("unexpected archived quiz %+v", stored)
	}

	// The cache is disposable: joins still resolve from the archive.
	if err := redisClient.Del(ctx, "trivia:quiz:"+pin).Err(); err != nil {
		t.Fatalf("drop cached quiz: %v", err)
	}
	guest := service.NewGame()
	_ = service.OpenJoinRoom(ctx, guest)
	joined, err := service.JoinRoom(ctx, guest, pin)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined != host {
		t.Fatalf("expected to join the host game")
	}

	for _, name := range []string{"Alice", "Bob"} {
		if err := service.AddPlayer(ctx, joined, name, domain.Character{}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if err := service.StartGame(ctx, host); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := service.SubmitAnswer(ctx, host, 1); err != nil {
			t.Fatalf("answer %d: %v", i+1, err)
		}
		clock.Advance(app.DefaultLeaderboardDwell)
	}
	view := host.View()
	if view.Phase != domain.PhasePodium || view.Podium.Places[len(view.Podium.Places)-1].Player.Score != 3000 {
		t.Fatalf("expected podium with a perfect score, got %+v", view)
	}

	clock.Advance(4 * time.Second)
	if err := service.PlayAgain(ctx, host); err != nil {
		t.Fatalf("play again: %v", err)
	}
	exists, err := redisClient.Exists(ctx, "trivia:game:"+pin).Result()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists != 0 {
		t.Fatalf("expected pin reservation released")
	}
	if _, err := service.Lookup(ctx, pin); !errors.Is(err, domain.ErrInvalidPIN) {
		t.Fatalf("expected finished game unreachable, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
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
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
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

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
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
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
