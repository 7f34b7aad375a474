package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
)

func TestActivate_AtMostOneActive(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	var windows []*domain.VotingWindow
	for i := 0; i < 5; i++ {
		w, err := app.WindowSvc.Create(ctx, ports.CreateWindowInput{
			Name:            "Round",
			StartTime:       time.Now().Add(-time.Hour),
			EndTime:         time.Now().Add(time.Hour),
			MaxVotesPerUser: 10,
		})
		require.NoError(t, err)
		assert.False(t, w.IsActive, "windows start inactive")
		windows = append(windows, w)
	}

	var wg sync.WaitGroup
	for _, w := range windows {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := app.WindowSvc.Activate(ctx, id)
			assert.NoError(t, err)
		}(w.ID)
	}
	wg.Wait()

	var active int
	require.NoError(t, app.DB.QueryRow(`SELECT COUNT(*) FROM voting_windows WHERE is_active`).Scan(&active))
	assert.Equal(t, 1, active)

	activated, err := app.WindowSvc.Activate(ctx, windows[2].ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	listed, err := app.WindowSvc.List(ctx, ports.PageInput{})
	require.NoError(t, err)
	require.Len(t, listed, 5)
	for _, w := range listed {
		assert.Equal(t, w.ID == windows[2].ID, w.IsActive, "window %s", w.ID)
	}

	deactivated, err := app.WindowSvc.Deactivate(ctx, windows[2].ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	open, err := app.WindowSvc.GetActiveWindow(ctx, time.Now())
	require.NoError(t, err)
	assert.Nil(t, open)

	_, err = app.WindowSvc.Activate(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = app.WindowSvc.Deactivate(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetActiveWindow_RespectsBounds(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	w, err := app.WindowSvc.Create(ctx, ports.CreateWindowInput{
		Name:            "Tomorrow",
		StartTime:       time.Now().Add(24 * time.Hour),
		EndTime:         time.Now().Add(48 * time.Hour),
		MaxVotesPerUser: 5,
	})
	require.NoError(t, err)
	_, err = app.WindowSvc.Activate(ctx, w.ID)
	require.NoError(t, err)

	open, err := app.WindowSvc.GetActiveWindow(ctx, time.Now())
	require.NoError(t, err)
	assert.Nil(t, open, "an active window before its start is not open")

	open, err = app.WindowSvc.GetActiveWindow(ctx, time.Now().Add(36*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, w.ID, open.ID)
}

func TestSubmitVotes_QuotaScenario(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	c1 := app.createContestant(t, "One")
	c2 := app.createContestant(t, "Two")
	w := app.openWindow(t, 50, c1, c2)
	user := app.createUser(t)

	require.NoError(t, app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: c1.ID, Count: 30}}))

	err := app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: c1.ID, Count: 25}})
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	require.NoError(t, app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: c2.ID, Count: 20}}))

	err = app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: c1.ID, Count: 1}})
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	total, err := app.VoteSvc.GetUserTotal(ctx, user.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, total)
}

func TestSubmitVotes_ConcurrentSubmissionsRespectCeiling(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	c := app.createContestant(t, "Solo")
	w := app.openWindow(t, 10, c)
	user := app.createUser(t)

	const attempts = 25
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: c.ID, Count: 1}})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrQuotaExceeded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, accepted)
	assert.Equal(t, attempts-10, rejected)

	total, err := app.VoteSvc.GetUserTotal(ctx, user.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestSubmitVotes_AppendOnly(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	c := app.createContestant(t, "Repeat")
	w := app.openWindow(t, 100, c)
	user := app.createUser(t)

	require.NoError(t, app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: c.ID, Count: 10}}))
	require.NoError(t, app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: c.ID, Count: 5}}))

	total, err := app.VoteSvc.GetUserTotal(ctx, user.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, total)

	var rows int
	require.NoError(t, app.DB.QueryRow(
		`SELECT COUNT(*) FROM votes WHERE user_id = $1 AND voting_window_id = $2`, user.ID, w.ID,
	).Scan(&rows))
	assert.Equal(t, 2, rows)
}

func TestSubmitVotes_DropsNonPositiveEntries(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	c1 := app.createContestant(t, "One")
	c2 := app.createContestant(t, "Two")
	c3 := app.createContestant(t, "Three")
	w := app.openWindow(t, 50, c1, c2, c3)
	user := app.createUser(t)

	err := app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{
		{ContestantID: c1.ID, Count: 10},
		{ContestantID: c2.ID, Count: -3},
		{ContestantID: c3.ID, Count: 0},
	})
	require.NoError(t, err)

	stats, err := app.ResultsSvc.GetDashboard(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, stats.Stats, 1)
	assert.Equal(t, c1.ID, stats.Stats[0].ContestantID)
	assert.EqualValues(t, 10, stats.Stats[0].TotalVotes)

	err = app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: c2.ID, Count: -1}})
	assert.ErrorIs(t, err, domain.ErrEmptySubmission)
}

func TestSubmitVotes_WindowClosed(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	c := app.createContestant(t, "Late")
	w := app.openWindow(t, 10, c)
	user := app.createUser(t)

	_, err := app.WindowSvc.Deactivate(ctx, w.ID)
	require.NoError(t, err)

	err = app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: c.ID, Count: 1}})
	assert.ErrorIs(t, err, domain.ErrWindowClosed)

	_, err = app.VoteSvc.VotingState(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrWindowClosed)
}

func TestDashboard_OmitsUnvotedAndOrdersByTotal(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	a := app.createContestant(t, "A")
	b := app.createContestant(t, "B")
	idle := app.createContestant(t, "Idle")
	w := app.openWindow(t, 100, a, b, idle)

	u1, u2 := app.createUser(t), app.createUser(t)
	require.NoError(t, app.VoteSvc.SubmitVotes(ctx, u1.ID, []domain.Allocation{{ContestantID: a.ID, Count: 5}, {ContestantID: b.ID, Count: 8}}))
	require.NoError(t, app.VoteSvc.SubmitVotes(ctx, u2.ID, []domain.Allocation{{ContestantID: a.ID, Count: 6}}))

	stats, err := app.ResultsSvc.GetDashboard(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Name, stats.VotingWindowName)
	require.Len(t, stats.Stats, 2)
	assert.Equal(t, a.ID, stats.Stats[0].ContestantID)
	assert.EqualValues(t, 11, stats.Stats[0].TotalVotes)
	assert.Equal(t, b.ID, stats.Stats[1].ContestantID)
	assert.EqualValues(t, 8, stats.Stats[1].TotalVotes)

	_, err = app.ResultsSvc.GetDashboard(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVotingStateAndHistory(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	a := app.createContestant(t, "Asha")
	b := app.createContestant(t, "Ravi")
	outsider := app.createContestant(t, "Outsider")
	w := app.openWindow(t, 20, a, b)
	user := app.createUser(t)

	require.NoError(t, app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: a.ID, Count: 3}}))
	require.NoError(t, app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: b.ID, Count: 4}}))

	err := app.VoteSvc.SubmitVotes(ctx, user.ID, []domain.Allocation{{ContestantID: outsider.ID, Count: 1}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	state, err := app.VoteSvc.VotingState(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, state.VotingWindow.ID)
	assert.Len(t, state.Contestants, 2)
	assert.Equal(t, 7, state.UserTotalVotes)

	history, err := app.VoteSvc.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Ravi", history[0].ContestantName, "newest first")
	assert.Equal(t, "Asha", history[1].ContestantName)
	assert.Equal(t, w.Name, history[0].VotingWindowName)
}
