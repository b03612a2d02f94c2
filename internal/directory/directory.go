package directory

import (
	"context"

	"github.com/katatrina/eduhub-BE/internal/db"
)

// Directory resolves role and group names into concrete user ids. Backed by
// the platform's user store here, but kept behind an interface because the
// dispatch engine treats it as an external collaborator that may be
// unavailable.
type Directory interface {
	UsersByRole(ctx context.Context, role string) ([]string, error)
	UsersByGroup(ctx context.Context, group string) ([]string, error)
	AllActiveUsers(ctx context.Context) ([]string, error)
}

type StoreDirectory struct {
	store db.Store
}

func NewStoreDirectory(store db.Store) *StoreDirectory {
	return &StoreDirectory{
		store: store,
	}
}

func (d *StoreDirectory) UsersByRole(ctx context.Context, role string) ([]string, error) {
	return d.store.ListUserIDsByRole(ctx, role)
}

func (d *StoreDirectory) UsersByGroup(ctx context.Context, group string) ([]string, error) {
	return d.store.ListUserIDsByGroup(ctx, group)
}

func (d *StoreDirectory) AllActiveUsers(ctx context.Context) ([]string, error) {
	return d.store.ListActiveUserIDs(ctx)
}
