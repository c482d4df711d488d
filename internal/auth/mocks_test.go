package auth

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/autobazar/internal/model"
	"github.com/hitoshi/autobazar/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByIdentityFn func(ctx context.Context, identity string) (*model.User, error)
	createFn         func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByIdentity(ctx context.Context, identity string) (*model.User, error) {
	if m.findByIdentityFn != nil {
		return m.findByIdentityFn(ctx, identity)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

// memoryUserRepo は登録と照合を往復させるテスト用のインメモリ実装。
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*model.User{}}
}

func (m *memoryUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memoryUserRepo) FindByIdentity(_ context.Context, identity string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[identity], nil
}

func (m *memoryUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Identity]; ok {
		return repository.ErrDuplicate
	}
	m.users[user.Identity] = user
	return nil
}

type mockSessionRepo struct {
	createFn              func(ctx context.Context, session *model.Session) error
	findByIDFn            func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn          func(ctx context.Context, id string) error
	deleteByUserIDFn      func(ctx context.Context, userID string) error
	deleteExpiredBeforeFn func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	if m.deleteExpiredBeforeFn != nil {
		return m.deleteExpiredBeforeFn(ctx, before)
	}
	return 0, nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.UserRepository = (*memoryUserRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)
