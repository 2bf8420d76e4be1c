package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/postgres"
	infraredis "trivia-service/internal/infra/redis"
)

func TestCheckAnswerPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, cleanup := startPostgres(t, ctx)
	defer cleanup()

	if err := postgres.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := postgres.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	store, err := postgres.Open(ctx, pgURL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	exerciseStore(t, ctx, store)
}

func TestCheckAnswerRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, cleanup := startRedis(t, ctx)
	defer cleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	store := infraredis.NewStore(client)
	defer store.Close()

	exerciseStore(t, ctx, store)
}

// exerciseStore runs the answer flow against a real backend: 0 -> 100 -> 200,
// a wrong answer leaves 200, then concurrent correct answers all land.
func exerciseStore(t *testing.T, ctx context.Context, store app.Store) {
	t.Helper()
	questions := app.NewQuestionService(store, store)
	people := app.NewPeopleService(store, nil, domain.AwardPoints)

	if _, err := questions.Import(ctx, sampleQuestions()); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := questions.RandomQuestion(ctx); err != nil {
		t.Fatalf("random: %v", err)
	}

	player, err := people.Create(ctx, domain.ProfileUpdate{Name: "Alice", Age: 30, Gender: domain.GenderFemale})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, want := range []int{100, 200} {
		res, err := questions.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: "q1", Answer: "4", UserID: player.ID})
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if !res.Correct || res.UpdatedScore == nil || *res.UpdatedScore != want {
			t.Fatalf("expected correct with score %d, got %+v", want, res)
		}
	}

	res, err := questions.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: "q1", Answer: "5", UserID: player.ID})
	if err != nil || res.Correct || res.UpdatedScore != nil {
		t.Fatalf("expected wrong answer, got %+v err=%v", res, err)
	}

	_, err = questions.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: "q1", Answer: "4", UserID: "ghost"})
	if !errors.Is(err, domain.ErrPersonNotFound) {
		t.Fatalf("expected person not found, got %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := questions.CheckAnswer(ctx, domain.CheckAnswerRequest{QuestionID: "q2", Answer: "Paris", UserID: player.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent check: %v", err)
		}
	}

	got, err := people.Get(ctx, player.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := 200 + n*domain.AwardPoints; got.Score != want {
		t.Fatalf("expected score %d, got %d", want, got.Score)
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Question: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: "4"},
		{ID: "q2", Question: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris"},
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
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
