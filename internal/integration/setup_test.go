package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	handler "github.com/vncsmyrnk/idolvote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/idolvote/internal/adapters/ratelimit"
	repo "github.com/vncsmyrnk/idolvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/idolvote/internal/adapters/storage/local"
	"github.com/vncsmyrnk/idolvote/internal/adapters/token"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/core/services"
)

const testSecret = "test-secret"

var migrationsDir = filepath.Join("..", "adapters", "repository", "postgres", "migrations")

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Sender      *capturingSender
	Windows     ports.WindowRepository
	Contestants ports.ContestantRepository
	Votes       ports.VoteRepository
	Results     ports.ResultsRepository
	Codes       ports.CodeRepository
	Users       ports.UserRepository
	VoteSvc     ports.VoteService
	WindowSvc   ports.WindowService
	ResultsSvc  ports.ResultsService
	AuthSvc     *services.AuthService
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := repo.Open(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyMigrations(ctx, db, migrationsDir))

	app := &TestApp{
		DB:          db,
		Sender:      &capturingSender{codes: map[string]string{}},
		Windows:     repo.NewWindowRepository(db),
		Contestants: repo.NewContestantRepository(db),
		Votes:       repo.NewVoteRepository(db),
		Results:     repo.NewResultsRepository(db),
		Codes:       repo.NewCodeRepository(db),
		Users:       repo.NewUserRepository(db),
		DBContainer: dbContainer,
	}

	images, err := local.NewImageStore(t.TempDir(), "images")
	require.NoError(t, err)

	app.WindowSvc = services.NewWindowService(app.Windows, app.Contestants)
	app.VoteSvc = services.NewVoteService(app.Windows, app.Contestants, app.Votes)
	app.ResultsSvc = services.NewResultsService(app.Windows, app.Results)
	app.AuthSvc = services.NewAuthService(
		app.Users,
		repo.NewAdminRepository(db),
		app.Codes,
		token.NewIssuer([]byte(testSecret), time.Hour),
		app.Sender,
		ratelimit.Noop{},
		services.AuthOptions{},
	)

	router := handler.NewHandler(app.AuthSvc, handler.Handlers{
		Auth:        handler.NewAuthHandler(app.AuthSvc),
		Contestants: handler.NewContestantHandler(services.NewContestantService(app.Contestants, images)),
		Windows:     handler.NewWindowHandler(app.WindowSvc),
		Votes:       handler.NewVoteHandler(app.VoteSvc),
		Dashboard:   handler.NewDashboardHandler(app.ResultsSvc),
	}, handler.RouterOptions{AllowedOrigins: []string{"*"}})
	app.Server = httptest.NewServer(router)

	t.Cleanup(func() { app.Teardown(t) })
	return app
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %s", err)
	}
}

type capturingSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *capturingSender) Send(_ context.Context, identifier domain.Identifier, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[identifier.String()] = code
	return nil
}

func (s *capturingSender) last(identifier string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[identifier]
}

func (app *TestApp) createContestant(t *testing.T, name string) *domain.Contestant {
	t.Helper()
	c := &domain.Contestant{ID: uuid.New(), Name: name, Age: 21, Gender: domain.GenderOthers}
	require.NoError(t, app.Contestants.Save(context.Background(), c))
	return c
}

func (app *TestApp) createUser(t *testing.T) *domain.User {
	t.Helper()
	email := fmt.Sprintf("user-%s@example.com", uuid.New())
	u := &domain.User{ID: uuid.New(), Email: &email}
	require.NoError(t, app.Users.Create(context.Background(), u))
	return u
}

// openWindow creates and activates a window that is open for the next hour.
func (app *TestApp) openWindow(t *testing.T, quota int, contestants ...*domain.Contestant) *domain.VotingWindow {
	t.Helper()
	ctx := context.Background()
	ids := make([]uuid.UUID, 0, len(contestants))
	for _, c := range contestants {
		ids = append(ids, c.ID)
	}
	now := time.Now()
	w, err := app.WindowSvc.Create(ctx, ports.CreateWindowInput{
		Name:            "Window " + uuid.NewString()[:8],
		StartTime:       now.Add(-time.Hour),
		EndTime:         now.Add(time.Hour),
		MaxVotesPerUser: quota,
		ContestantIDs:   ids,
	})
	require.NoError(t, err)
	w, err = app.WindowSvc.Activate(ctx, w.ID)
	require.NoError(t, err)
	return w
}
