package repository

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/storefront-go/internal/model"
)

// MemoryStore keeps users and addresses in process memory. It mirrors the
// MySQL schema's unique keys on email and phone under a single lock, so it is
// safe for concurrent use. Used for local development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	nextUser  int64
	nextAddr  int64
	users     map[int64]model.User
	byEmail   map[string]int64
	byPhone   map[int64]int64
	addresses []model.Address
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]model.User),
		byEmail: make(map[string]int64),
		byPhone: make(map[int64]int64),
	}
}

// Users returns the user-facing half of the store.
func (m *MemoryStore) Users() *MemoryUsers {
	return (*MemoryUsers)(m)
}

// Addresses returns the address-facing half of the store.
func (m *MemoryStore) Addresses() *MemoryAddresses {
	return (*MemoryAddresses)(m)
}

// MemoryUsers is the user view of a MemoryStore.
type MemoryUsers MemoryStore

// Create inserts the user or returns ErrDuplicateUser.
func (u *MemoryUsers) Create(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := (*MemoryStore)(u)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[user.Email]; ok {
		return ErrDuplicateUser
	}
	if _, ok := m.byPhone[user.Phone]; ok {
		return ErrDuplicateUser
	}

	m.nextUser++
	now := time.Now().UTC()
	user.ID = m.nextUser
	user.CreatedAt = now
	user.UpdatedAt = now

	m.users[user.ID] = *user
	m.byEmail[user.Email] = user.ID
	m.byPhone[user.Phone] = user.ID
	return nil
}

// GetByEmail retrieves a user by their email address.
func (u *MemoryUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := (*MemoryStore)(u)
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	user := m.users[id]
	return &user, nil
}

// GetByID retrieves a user by their ID.
func (u *MemoryUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := (*MemoryStore)(u)
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// MemoryAddresses is the address view of a MemoryStore.
type MemoryAddresses MemoryStore

// Create appends a new address row.
func (a *MemoryAddresses) Create(ctx context.Context, addr *model.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := (*MemoryStore)(a)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[addr.UserID]; !ok {
		return ErrUserNotFound
	}

	m.nextAddr++
	addr.ID = m.nextAddr
	addr.CreatedAt = time.Now().UTC()
	m.addresses = append(m.addresses, *addr)
	return nil
}

// ListByUser retrieves all addresses for a user, oldest first.
func (a *MemoryAddresses) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := (*MemoryStore)(a)
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []model.Address
	for _, addr := range m.addresses {
		if addr.UserID == userID {
			result = append(result, addr)
		}
	}
	return result, nil
}
