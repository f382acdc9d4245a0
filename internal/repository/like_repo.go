package repository

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/filter"
)

// LikeRepository provides data access methods for the Like model.
// It is the relationship index over the directed like graph.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// likeColumns returns the column holding the neighbour ids and the column matched against userID.
func likeColumns(dir filter.Direction) (neighbour, match string) {
	if dir == filter.Outgoing {
		return "likee_id", "liker_id"
	}
	return "liker_id", "likee_id"
}

// likeIDs is the neighbour-id subquery for userID, bound to the same connection/transaction as tx.
func likeIDs(tx *gorm.DB, userID uint64, dir filter.Direction) *gorm.DB {
	neighbour, match := likeColumns(dir)
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&db.Like{}).
		Select(neighbour).
		Where(match+" = ?", userID)
}

// LikesOf returns the ids connected to userID in the given direction.
//
// Behavior:
//   - Incoming → every liker_id with likee_id = userID.
//   - Outgoing → every likee_id with liker_id = userID.
//   - No edges → empty slice, never an error.
//   - Ids are returned in ascending order.
//
// Example:
//
//	repo.LikesOf(ctx, 2, filter.Incoming) // -> [1 3] after edges 1→2, 3→2
func (r *LikeRepository) LikesOf(ctx context.Context, userID uint64, dir filter.Direction) ([]uint64, error) {
	neighbour, match := likeColumns(dir)

	ids := []uint64{}
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where(match+" = ?", userID).
		Pluck(neighbour, &ids).Error
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint64{}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Like records that likerID likes likeeID.
//
// Behavior:
//   - Self-likes are rejected with ErrInvalidArgument.
//   - An existing (liker, likee) edge fails with ErrAlreadyExists; the edge is never updated.
//   - Existence of the likee is the caller's concern.
func (r *LikeRepository) Like(ctx context.Context, likerID, likeeID uint64) error {
	if likerID == likeeID {
		return fmt.Errorf("%w: cannot like yourself", svcErr.ErrInvalidArgument)
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Like{LikerID: likerID, LikeeID: likeeID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: you already like this user", svcErr.ErrAlreadyExists)
	}
	return nil
}

// HasLiked checks whether likerID has liked likeeID.
//
// Example:
//
//	repo.HasLiked(ctx, 1, 2) // -> true if user 1 liked user 2
func (r *LikeRepository) HasLiked(ctx context.Context, likerID, likeeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liker_id = ? AND likee_id = ?", likerID, likeeID).
		Count(&count).Error
	return count > 0, err
}

// CountLikers returns how many users like the given user.
// Used in conjunction with Redis cache (DB is fallback).
func (r *LikeRepository) CountLikers(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("likee_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
