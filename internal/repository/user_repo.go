package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/filter"
	"github.com/oggyb/muzz-matching/internal/utils/pagination"
)

// UserRepository provides data access methods for the User model,
// including the discovery query.
type UserRepository struct {
	db *gorm.DB
	clock
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB, opts ...Option) *UserRepository {
	return &UserRepository{db: database, clock: newClock(opts)}
}

// GetByID loads a user or fails with ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, userID uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", svcErr.ErrNotFound, userID)
		}
		return nil, err
	}
	return &u, nil
}

// Exists reports whether a user with the given id is stored.
func (r *UserRepository) Exists(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// TouchLastActive bumps the user's last-active timestamp to now.
func (r *UserRepository) TouchLastActive(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Update("last_active", r.now().UTC()).Error
}

// FindUsers returns one page of discovery candidates for the requester.
//
// Behavior:
//   - Runs DiscoveryPipeline (exclude requester, gender, optional age window,
//     like-graph restriction, sort) and paginates the result.
//   - "today" for the age window comes from the repository clock.
//   - No match is an empty page, not an error.
//
// Example:
//
//	c := filter.NewUserCriteria(1, "female", 10)
//	c.MinAge, c.MaxAge = 25, 30
//	repo.FindUsers(ctx, c)
func (r *UserRepository) FindUsers(ctx context.Context, c filter.UserCriteria) (*pagination.Page[db.User], error) {
	steps := DiscoveryPipeline(c, r.today())
	query := func(tx *gorm.DB) *gorm.DB {
		return tx.Scopes(steps...)
	}
	return pagination.Paginate[db.User](ctx, r.db, query, c.PageNumber, c.PageSize)
}
