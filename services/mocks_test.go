package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"neuro-sync/database"
	"neuro-sync/models"

	"github.com/stretchr/testify/mock"
)

// ==================== MOCKS ====================

// passthroughTx runs fn directly and counts transactions
type passthroughTx struct {
	calls int
}

var _ Transactor = (*passthroughTx)(nil)

func (p *passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type MockUserRepository struct {
	mock.Mock
}

var _ UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) TouchActive(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

var _ TaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, f database.TaskFilter) ([]*models.Task, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskRepository) ListOverdue(ctx context.Context, userID string, now time.Time) ([]*models.Task, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

type MockHabitRepository struct {
	mock.Mock
}

var _ HabitRepository = (*MockHabitRepository)(nil)

func (m *MockHabitRepository) Get(ctx context.Context, id string) (*models.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Habit), args.Error(1)
}

func (m *MockHabitRepository) Update(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	args := m.Called(ctx, habit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Habit), args.Error(1)
}

func (m *MockHabitRepository) List(ctx context.Context, f database.HabitFilter) ([]*models.Habit, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Habit), args.Error(1)
}

type MockAchievementRepository struct {
	mock.Mock
}

var _ AchievementRepository = (*MockAchievementRepository)(nil)

func (m *MockAchievementRepository) Get(ctx context.Context, id string) (*models.Achievement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Achievement), args.Error(1)
}

func (m *MockAchievementRepository) Update(ctx context.Context, a *models.Achievement) (*models.Achievement, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Achievement), args.Error(1)
}

func (m *MockAchievementRepository) List(ctx context.Context, f database.AchievementFilter) ([]*models.Achievement, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Achievement), args.Error(1)
}

type MockXPLedger struct {
	mock.Mock
}

var _ XPLedger = (*MockXPLedger)(nil)

func (m *MockXPLedger) Append(ctx context.Context, entry *models.XPEntry) (*models.XPEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.XPEntry), args.Error(1)
}

func (m *MockXPLedger) TotalForUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockStateStore struct {
	mock.Mock
}

var _ StateStore = (*MockStateStore)(nil)

func (m *MockStateStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStateStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// ==================== HELPERS ====================

type mockStores struct {
	users        *MockUserRepository
	tasks        *MockTaskRepository
	habits       *MockHabitRepository
	achievements *MockAchievementRepository
	xp           *MockXPLedger
	state        *MockStateStore
}

func newMockStores() *mockStores {
	return &mockStores{
		users:        new(MockUserRepository),
		tasks:        new(MockTaskRepository),
		habits:       new(MockHabitRepository),
		achievements: new(MockAchievementRepository),
		xp:           new(MockXPLedger),
		state:        new(MockStateStore),
	}
}

func (m *mockStores) stores() Stores {
	return Stores{
		Users:        m.users,
		Tasks:        m.tasks,
		Habits:       m.habits,
		Achievements: m.achievements,
		XP:           m.xp,
		AppState:     m.state,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func xpEntry(source models.XPSource, points int) interface{} {
	return mock.MatchedBy(func(e *models.XPEntry) bool {
		return e.Source == source && e.Points == points
	})
}
