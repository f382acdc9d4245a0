package discovery

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/filter"
	"github.com/oggyb/muzz-matching/internal/repository"
	"github.com/oggyb/muzz-matching/internal/service/rpc"
)

// Service implements the Discovery gRPC API.
// It contains the business logic on top of repository and cache layers.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	likes  *repository.LikeRepository
	now    func() time.Time
}

// NewDiscoveryService creates a new Discovery service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via UserRepository and LikeRepository)
//   - RedisCache for like counters
//   - Config paging defaults
func NewDiscoveryService(appCtx *app.AppContext, opts ...Option) *Service {
	s := &Service{appCtx: appCtx, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.users = repository.NewUserRepository(appCtx.DB, repository.WithClock(s.now))
	s.likes = repository.NewLikeRepository(appCtx.DB)
	return s
}

// Option configures the service.
type Option func(*Service)

// WithClock pins "now" (age windows, reported ages, activity bumps).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type listUsersRequest struct {
	UserID  uint64 `json:"user_id" validate:"required"`
	Gender  string `json:"gender" validate:"omitempty,oneof=male female"`
	MinAge  int    `json:"min_age" validate:"gte=0"`
	MaxAge  int    `json:"max_age" validate:"gte=0"`
	Likers  bool   `json:"likers"`
	Likees  bool   `json:"likees"`
	OrderBy string `json:"order_by"`
	rpc.Paging
}

type userView struct {
	ID         uint64    `json:"id"`
	Username   string    `json:"username"`
	Gender     string    `json:"gender"`
	Age        int       `json:"age"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// ListUsers returns one page of discovery candidates.
//
// Behavior:
//   - Missing gender defaults to the opposite of the requester's gender.
//   - Missing age bounds default to 18..99, which disables the age filter;
//     min_age above max_age is rejected.
//   - Page size defaults to PAGE_SIZE_DEFAULT and is capped at PAGE_SIZE_MAX;
//     a page_token from a previous response overrides page_number/page_size.
//   - Bumps the requester's last-active time.
//
// Example:
//
//	svc.ListUsers(ctx, {"user_id": 1, "min_age": 25, "max_age": 30, "likers": true})
func (s *Service) ListUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listUsersRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("ListUsers called", "user", req.UserID, "gender", req.Gender, "min_age", req.MinAge, "max_age", req.MaxAge)
	s.touch(ctx, req.UserID)

	if req.Gender == "" {
		requester, err := s.users.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		req.Gender = oppositeGender(requester.Gender)
	}

	number, size, err := req.Resolve(s.appCtx.Config.Paging.DefaultSize, s.appCtx.Config.Paging.MaxSize)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	c := filter.NewUserCriteria(req.UserID, req.Gender, size)
	c.PageNumber = number
	c.Likers, c.Likees = req.Likers, req.Likees
	if req.MinAge != 0 {
		c.MinAge = req.MinAge
	}
	if req.MaxAge != 0 {
		c.MaxAge = req.MaxAge
	}
	if req.OrderBy != "" {
		c.OrderBy = filter.SortKey(req.OrderBy)
	}
	if c.MinAge > c.MaxAge {
		return nil, svcErr.InvalidArgument("min_age must not exceed max_age")
	}

	page, err := s.users.FindUsers(ctx, c)
	if err != nil {
		s.appCtx.Logger.Error("FindUsers failed", "user", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}

	today := s.now()
	resp := rpc.PageOf(page, func(u db.User) userView {
		return userView{
			ID:         u.ID,
			Username:   u.Username,
			Gender:     u.Gender,
			Age:        ageOn(u.DateOfBirth, today),
			CreatedAt:  u.CreatedAt,
			LastActive: u.LastActive,
		}
	})

	s.appCtx.Logger.Debug("ListUsers result", "count", len(resp.Items), "total", resp.TotalCount)
	return rpc.Encode(resp)
}

type likeRequest struct {
	UserID      uint64 `json:"user_id" validate:"required"`
	RecipientID uint64 `json:"recipient_id" validate:"required"`
}

// LikeUser records that user_id likes recipient_id and reports whether the like is mutual.
//
// Behavior:
//   - Self-likes → InvalidArgument; unknown recipient → NotFound; repeated like → AlreadyExists.
//   - Bumps the recipient's cached like count when it is cached.
func (s *Service) LikeUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req likeRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("LikeUser called", "user", req.UserID, "recipient", req.RecipientID)
	s.touch(ctx, req.UserID)

	if req.UserID != req.RecipientID {
		if _, err := s.users.GetByID(ctx, req.RecipientID); err != nil {
			return nil, svcErr.Map(err)
		}
	}
	if err := s.likes.Like(ctx, req.UserID, req.RecipientID); err != nil {
		return nil, svcErr.Map(err)
	}

	key := s.appCtx.RedisCache.KeyForLikeCount(req.RecipientID)
	if err := s.appCtx.RedisCache.IncrIfCached(ctx, key); err != nil {
		s.appCtx.Logger.Warn("like count cache update failed", "key", key, "err", err)
	}

	mutual, err := s.likes.HasLiked(ctx, req.RecipientID, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	return rpc.Encode(struct {
		Mutual bool `json:"mutual"`
	}{mutual})
}

type listLikesRequest struct {
	UserID    uint64 `json:"user_id" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=incoming outgoing likers likees"`
}

// ListLikes returns the ids connected to user_id in the like graph.
// direction "incoming"/"likers" lists who likes the user, "outgoing"/"likees" whom the user likes.
func (s *Service) ListLikes(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listLikesRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}
	dir, _ := filter.ParseDirection(req.Direction)

	ids, err := s.likes.LikesOf(ctx, req.UserID, dir)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return rpc.Encode(struct {
		Direction string   `json:"direction"`
		UserIDs   []uint64 `json:"user_ids"`
	}{dir.String(), ids})
}

type countLikesRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
}

// CountLikes returns how many users like user_id.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On a miss falls back to DB via repository.CountLikers.
//  3. On DB fetch, updates Redis with the configured TTL.
func (s *Service) CountLikes(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req countLikesRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}

	key := s.appCtx.RedisCache.KeyForLikeCount(req.UserID)
	count, ok, err := s.appCtx.RedisCache.GetCount(ctx, key)
	if err != nil {
		s.appCtx.Logger.Warn("like count cache read failed", "key", key, "err", err)
	}
	if !ok {
		if count, err = s.likes.CountLikers(ctx, req.UserID); err != nil {
			return nil, svcErr.Map(err)
		}
		_ = s.appCtx.RedisCache.SetCount(ctx, key, count)
	}

	return rpc.Encode(struct {
		Count int64 `json:"count"`
	}{count})
}

// touch bumps the caller's last-active time; failures never fail the request.
func (s *Service) touch(ctx context.Context, userID uint64) {
	if err := s.users.TouchLastActive(ctx, userID); err != nil {
		s.appCtx.Logger.Warn("last-active bump failed", "user", userID, "err", err)
	}
}

func oppositeGender(g string) string {
	if g == db.GenderMale {
		return db.GenderFemale
	}
	return db.GenderMale
}

// ageOn is the age in whole years on the given day.
func ageOn(dob, day time.Time) int {
	dob, day = dob.UTC(), day.UTC()
	age := day.Year() - dob.Year()
	if day.Month() < dob.Month() || (day.Month() == dob.Month() && day.Day() < dob.Day()) {
		age--
	}
	return age
}
