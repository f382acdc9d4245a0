package pagination

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"

	svcErr "github.com/oggyb/muzz-matching/internal/errors"
)

// Page is one window of an ordered result set plus the metadata of the whole set.
//
// Invariants:
//   - len(Items) <= PageSize, and equals PageSize on every page but the last.
//   - TotalPages == ceil(TotalCount / PageSize).
//   - Pages past TotalPages carry no items but keep the true totals.
type Page[T any] struct {
	Items      []T
	PageNumber int
	PageSize   int
	TotalCount int64
	TotalPages int
}

// Query builds the filtered, ordered source a page is cut from.
// It is invoked once for the count and once for the window, on the same transaction.
type Query func(tx *gorm.DB) *gorm.DB

// NewPage assembles a Page from an already sliced window and the pre-slice total.
func NewPage[T any](items []T, totalCount int64, pageNumber, pageSize int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(pageSize))),
	}
}

// HasNext reports whether a later page holds items.
func (p *Page[T]) HasNext() bool {
	return p.PageNumber < p.TotalPages
}

// Validate rejects page parameters below 1. The core never clamps silently.
func Validate(pageNumber, pageSize int) error {
	if pageNumber < 1 {
		return fmt.Errorf("%w: page number must be >= 1, got %d", svcErr.ErrInvalidArgument, pageNumber)
	}
	if pageSize < 1 {
		return fmt.Errorf("%w: page size must be >= 1, got %d", svcErr.ErrInvalidArgument, pageSize)
	}
	return nil
}

// Paginate counts the rows matched by query, then loads the requested window.
//
// Behavior:
//   - Fails with ErrInvalidArgument when pageNumber < 1 or pageSize < 1.
//   - Count and window run in one read transaction so both see the same snapshot
//     on stores that provide one.
//   - A window past the end is empty, not an error.
//
// Example:
//
//	page, err := pagination.Paginate[db.User](ctx, gdb, query, 2, 10) // rows 11..20
func Paginate[T any](ctx context.Context, db *gorm.DB, query Query, pageNumber, pageSize int) (*Page[T], error) {
	if err := Validate(pageNumber, pageSize); err != nil {
		return nil, err
	}

	var (
		total int64
		items []T
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := query(tx.Model(new(T))).Count(&total).Error; err != nil {
			return err
		}

		// compare page indexes, not offsets: (pageNumber-1)*pageSize can overflow
		if total == 0 || int64(pageNumber-1) > (total-1)/int64(pageSize) {
			return nil
		}
		return query(tx.Model(new(T))).
			Offset((pageNumber - 1) * pageSize).
			Limit(pageSize).
			Find(&items).Error
	})
	if err != nil {
		return nil, err
	}

	return NewPage(items, total, pageNumber, pageSize), nil
}
