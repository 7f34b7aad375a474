package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
)

// memStore is an in-memory stand-in for the postgres repositories.
type memStore struct {
	mu          sync.Mutex
	windows     map[uuid.UUID]*domain.VotingWindow
	contestants map[uuid.UUID]*domain.Contestant
	votes       []domain.Vote
	tallies     map[[2]uuid.UUID]int
	users       map[uuid.UUID]*domain.User
	admins      map[string]*domain.Admin
	codes       []*domain.OneTimeCode
	failWith    error
}

func newMemStore() *memStore {
	return &memStore{
		windows:     map[uuid.UUID]*domain.VotingWindow{},
		contestants: map[uuid.UUID]*domain.Contestant{},
		tallies:     map[[2]uuid.UUID]int{},
		users:       map[uuid.UUID]*domain.User{},
		admins:      map[string]*domain.Admin{},
	}
}

type memWindows struct{ *memStore }

func (m memWindows) Save(_ context.Context, w *domain.VotingWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *w
	m.windows[w.ID] = &copied
	return nil
}

func (m memWindows) GetByID(_ context.Context, id uuid.UUID) (*domain.VotingWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w: voting window %s", domain.ErrNotFound, id)
	}
	copied := *w
	return &copied, nil
}

func (m memWindows) List(_ context.Context, limit, offset int) ([]*domain.VotingWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.VotingWindow{}
	for _, w := range m.windows {
		copied := *w
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*domain.VotingWindow{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m memWindows) Activate(_ context.Context, id uuid.UUID) (*domain.VotingWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w: voting window %s", domain.ErrNotFound, id)
	}
	for _, w := range m.windows {
		w.IsActive = false
	}
	target.IsActive = true
	copied := *target
	return &copied, nil
}

func (m memWindows) Deactivate(_ context.Context, id uuid.UUID) (*domain.VotingWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w: voting window %s", domain.ErrNotFound, id)
	}
	target.IsActive = false
	copied := *target
	return &copied, nil
}

func (m memWindows) GetOpen(_ context.Context, now time.Time) (*domain.VotingWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, w := range m.windows {
		if w.IsOpenAt(now) {
			copied := *w
			return &copied, nil
		}
	}
	return nil, nil
}

type memContestants struct{ *memStore }

func (m memContestants) Save(_ context.Context, c *domain.Contestant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.contestants[c.ID] = c
	return nil
}

func (m memContestants) List(_ context.Context, limit, offset int) ([]*domain.Contestant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Contestant{}
	for _, c := range m.contestants {
		out = append(out, c)
	}
	if offset >= len(out) {
		return []*domain.Contestant{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m memContestants) CountExisting(_ context.Context, ids []uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := m.contestants[id]; ok {
			n++
		}
	}
	return n, nil
}

func (m memContestants) ListByWindow(_ context.Context, windowID uuid.UUID) ([]*domain.Contestant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Contestant{}
	w, ok := m.windows[windowID]
	if !ok {
		return out, nil
	}
	for _, id := range w.ContestantIDs {
		if c, ok := m.contestants[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type memVotes struct{ *memStore }

func (m memVotes) UserTotal(_ context.Context, userID, windowID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, v := range m.votes {
		if v.UserID == userID && v.VotingWindowID == windowID {
			total += v.VoteCount
		}
	}
	return total, nil
}

func (m memVotes) Append(_ context.Context, userID, windowID uuid.UUID, maxVotes int, allocations []domain.Allocation) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	requested := 0
	for _, a := range allocations {
		if a.Count > maxVotes-requested {
			return 0, domain.ErrQuotaExceeded
		}
		requested += a.Count
	}
	key := [2]uuid.UUID{userID, windowID}
	if requested > maxVotes-m.tallies[key] {
		return 0, domain.ErrQuotaExceeded
	}
	m.tallies[key] += requested
	for _, a := range allocations {
		m.votes = append(m.votes, domain.Vote{
			ID:             uuid.New(),
			UserID:         userID,
			ContestantID:   a.ContestantID,
			VotingWindowID: windowID,
			VoteCount:      a.Count,
			CreatedAt:      time.Now(),
		})
	}
	return m.tallies[key], nil
}

func (m memVotes) History(_ context.Context, userID uuid.UUID) ([]domain.VoteHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.VoteHistoryEntry{}
	for i := len(m.votes) - 1; i >= 0; i-- {
		v := m.votes[i]
		if v.UserID != userID {
			continue
		}
		w := m.windows[v.VotingWindowID]
		out = append(out, domain.VoteHistoryEntry{
			VotingWindowName:  w.Name,
			VotingWindowStart: w.StartTime,
			VotingWindowEnd:   w.EndTime,
			ContestantName:    m.contestants[v.ContestantID].Name,
			VoteCount:         v.VoteCount,
			VotedAt:           v.CreatedAt,
		})
	}
	return out, nil
}

func (m memVotes) ContestantTotals(_ context.Context, windowID uuid.UUID) ([]domain.ContestantVoteStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := map[uuid.UUID]int64{}
	for _, v := range m.votes {
		if v.VotingWindowID == windowID {
			totals[v.ContestantID] += int64(v.VoteCount)
		}
	}
	var out []domain.ContestantVoteStat
	for id, total := range totals {
		out = append(out, domain.ContestantVoteStat{ContestantID: id, ContestantName: m.contestants[id].Name, TotalVotes: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalVotes != out[j].TotalVotes {
			return out[i].TotalVotes > out[j].TotalVotes
		}
		return out[i].ContestantID.String() < out[j].ContestantID.String()
	})
	return out, nil
}

type memUsers struct{ *memStore }

func (m memUsers) GetByIdentifier(_ context.Context, identifier domain.Identifier) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if identifier.IsMobile() && u.MobileNumber != nil && *u.MobileNumber == identifier.MobileNumber {
			return u, nil
		}
		if !identifier.IsMobile() && u.Email != nil && *u.Email == identifier.Email {
			return u, nil
		}
	}
	return nil, nil
}

func (m memUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if user.MobileNumber != nil && u.MobileNumber != nil && *u.MobileNumber == *user.MobileNumber {
			return domain.ErrConflict
		}
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return domain.ErrConflict
		}
	}
	m.users[user.ID] = user
	return nil
}

type memAdmins struct{ *memStore }

func (m memAdmins) GetByUsername(_ context.Context, username string) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admins[username], nil
}

func (m memAdmins) Create(_ context.Context, admin *domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[admin.Username]; ok {
		return domain.ErrConflict
	}
	m.admins[admin.Username] = admin
	return nil
}

type memCodes struct{ *memStore }

func (m memCodes) Create(_ context.Context, code *domain.OneTimeCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	code.CreatedAt = time.Now()
	m.codes = append(m.codes, code)
	return nil
}

func (m memCodes) Consume(_ context.Context, identifier domain.Identifier, code string, now time.Time) (*domain.OneTimeCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.codes) - 1; i >= 0; i-- {
		c := m.codes[i]
		owner := c.Email
		if identifier.IsMobile() {
			owner = c.MobileNumber
		}
		if owner == nil || *owner != identifier.String() || c.Code != code || c.IsUsed || !c.ExpiresAt.After(now) {
			continue
		}
		c.IsUsed = true
		return c, nil
	}
	return nil, nil
}

func (m memCodes) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.codes[:0]
	var removed int64
	for _, c := range m.codes {
		if c.ExpiresAt.Before(before) || (c.IsUsed && c.CreatedAt.Before(before)) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.codes = kept
	return removed, nil
}

// fakeTokens encodes claims as "type:subject".
type fakeTokens struct{}

func (fakeTokens) Issue(claims domain.TokenClaims) (string, error) {
	return string(claims.Type) + ":" + claims.Subject, nil
}

func (fakeTokens) Parse(tok string) (*domain.TokenClaims, error) {
	typ, sub, ok := strings.Cut(tok, ":")
	if !ok {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrAuthentication)
	}
	return &domain.TokenClaims{Subject: sub, Type: domain.TokenType(typ)}, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (f *fakeSender) Send(_ context.Context, identifier domain.Identifier, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.sent == nil {
		f.sent = map[string]string{}
	}
	f.sent[identifier.String()] = code
	return nil
}

type fakeLimiter struct {
	allowed bool
	err     error
}

func (f fakeLimiter) Allow(context.Context, string) (bool, error) {
	return f.allowed, f.err
}

type memImages struct {
	saved map[string]string
}

func (m *memImages) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	m.saved[filename] = string(content)
	return "images/" + filename, nil
}

func (m *memImages) Delete(_ context.Context, ref string) error {
	name := strings.TrimPrefix(ref, "images/")
	if _, ok := m.saved[name]; !ok {
		return fmt.Errorf("%w: image %s", domain.ErrNotFound, ref)
	}
	delete(m.saved, name)
	return nil
}
