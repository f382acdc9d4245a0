package mailbox

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oggyb/muzz-matching/internal/app"
	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/filter"
	"github.com/oggyb/muzz-matching/internal/repository"
	"github.com/oggyb/muzz-matching/internal/service/rpc"
)

// Service implements the Mailbox gRPC API on top of MessageRepository
// and the unread counter cache.
type Service struct {
	appCtx   *app.AppContext
	messages *repository.MessageRepository
	users    *repository.UserRepository
}

// NewMailboxService creates a new Mailbox service with dependencies from AppContext.
// opts configure the repositories (WithClock in tests).
func NewMailboxService(appCtx *app.AppContext, opts ...repository.Option) *Service {
	return &Service{
		appCtx:   appCtx,
		messages: repository.NewMessageRepository(appCtx.DB, opts...),
		users:    repository.NewUserRepository(appCtx.DB, opts...),
	}
}

type messageView struct {
	ID          uint64     `json:"id"`
	SenderID    uint64     `json:"sender_id"`
	RecipientID uint64     `json:"recipient_id"`
	Content     string     `json:"content"`
	SentAt      time.Time  `json:"sent_at"`
	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

func viewOf(m db.Message) messageView {
	return messageView{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		SentAt:      m.SentAt,
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
	}
}

type listMessagesRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
	Folder string `json:"folder"`
	rpc.Paging
}

// ListMessages returns one page of the user's Inbox, Outbox or Unread folder.
// Any folder other than Inbox/Outbox (including none) lists Unread.
//
// Example:
//
//	svc.ListMessages(ctx, {"user_id": 1, "folder": "Inbox", "page_size": 20})
func (s *Service) ListMessages(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listMessagesRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("ListMessages called", "user", req.UserID, "folder", req.Folder)
	s.touch(ctx, req.UserID)

	number, size, err := req.Resolve(s.appCtx.Config.Paging.DefaultSize, s.appCtx.Config.Paging.MaxSize)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	page, err := s.messages.FindMessages(ctx, filter.MessageCriteria{
		OwnerID:    req.UserID,
		Folder:     filter.ParseFolder(req.Folder),
		PageNumber: number,
		PageSize:   size,
	})
	if err != nil {
		s.appCtx.Logger.Error("FindMessages failed", "user", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}
	return rpc.Encode(rpc.PageOf(page, viewOf))
}

type threadRequest struct {
	UserID      uint64 `json:"user_id" validate:"required"`
	OtherUserID uint64 `json:"other_user_id" validate:"required"`
}

// GetThread returns the whole conversation with other_user_id as user_id sees
// it, newest first. Messages user_id deleted are left out.
func (s *Service) GetThread(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req threadRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("GetThread called", "user", req.UserID, "other", req.OtherUserID)
	s.touch(ctx, req.UserID)

	msgs, err := s.messages.FindThread(ctx, req.UserID, req.OtherUserID)
	if err != nil {
		s.appCtx.Logger.Error("FindThread failed", "user", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}

	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, viewOf(m))
	}
	return rpc.Encode(struct {
		Messages []messageView `json:"messages"`
	}{views})
}

type messageRequest struct {
	UserID    uint64 `json:"user_id" validate:"required"`
	MessageID uint64 `json:"message_id" validate:"required"`
}

// GetMessage returns a single message to one of its parties.
func (s *Service) GetMessage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req messageRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}

	m, err := s.messages.GetMessage(ctx, req.MessageID, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return rpc.Encode(viewOf(*m))
}

type sendRequest struct {
	UserID      uint64 `json:"user_id" validate:"required"`
	RecipientID uint64 `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required,max=4000"`
}

// SendMessage stores a new message from user_id to recipient_id.
//
// Behavior:
//   - Unknown recipient → FailedPrecondition (ErrInvalidRecipient).
//   - The recipient's cached unread count is bumped when cached.
func (s *Service) SendMessage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req sendRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("SendMessage called", "user", req.UserID, "recipient", req.RecipientID)
	s.touch(ctx, req.UserID)

	ok, err := s.users.Exists(ctx, req.RecipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !ok {
		return nil, svcErr.Map(fmt.Errorf("%w: user %d", svcErr.ErrInvalidRecipient, req.RecipientID))
	}

	m, err := s.messages.Create(ctx, req.UserID, req.RecipientID, req.Content)
	if err != nil {
		s.appCtx.Logger.Error("Create message failed", "user", req.UserID, "err", err)
		return nil, svcErr.Map(err)
	}

	key := s.appCtx.RedisCache.KeyForUnreadCount(req.RecipientID)
	if err := s.appCtx.RedisCache.IncrIfCached(ctx, key); err != nil {
		s.appCtx.Logger.Warn("unread count cache update failed", "key", key, "err", err)
	}
	return rpc.Encode(viewOf(*m))
}

// MarkRead marks a received message as read. Re-marking keeps the first read time.
func (s *Service) MarkRead(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req messageRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("MarkRead called", "user", req.UserID, "message", req.MessageID)

	m, err := s.messages.MarkRead(ctx, req.MessageID, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	s.invalidateUnread(ctx, req.UserID)
	return rpc.Encode(viewOf(*m))
}

// DeleteMessage soft-deletes the requester's copy of a message and reports the
// resulting lifecycle state ("partially_deleted" or "purged").
func (s *Service) DeleteMessage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req messageRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("DeleteMessage called", "user", req.UserID, "message", req.MessageID)

	state, err := s.messages.SoftDelete(ctx, req.MessageID, req.UserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	s.invalidateUnread(ctx, req.UserID)
	return rpc.Encode(struct {
		State string `json:"state"`
	}{state.String()})
}

type countUnreadRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
}

// CountUnread returns the size of the user's Unread folder.
// Cache-first strategy:
//  1. Attempts to read from Redis (messages:unread:userID).
//  2. On a miss falls back to DB via repository.CountUnread.
//  3. On DB fetch, updates Redis with the configured TTL.
func (s *Service) CountUnread(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req countUnreadRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, svcErr.Map(err)
	}

	key := s.appCtx.RedisCache.KeyForUnreadCount(req.UserID)
	count, ok, err := s.appCtx.RedisCache.GetCount(ctx, key)
	if err != nil {
		s.appCtx.Logger.Warn("unread count cache read failed", "key", key, "err", err)
	}
	if !ok {
		if count, err = s.messages.CountUnread(ctx, req.UserID); err != nil {
			return nil, svcErr.Map(err)
		}
		_ = s.appCtx.RedisCache.SetCount(ctx, key, count)
	}

	return rpc.Encode(struct {
		Count int64 `json:"count"`
	}{count})
}

func (s *Service) invalidateUnread(ctx context.Context, userID uint64) {
	if err := s.appCtx.RedisCache.Invalidate(ctx, s.appCtx.RedisCache.KeyForUnreadCount(userID)); err != nil {
		s.appCtx.Logger.Warn("unread count cache invalidation failed", "user", userID, "err", err)
	}
}

// touch bumps the caller's last-active time; failures never fail the request.
func (s *Service) touch(ctx context.Context, userID uint64) {
	if err := s.users.TouchLastActive(ctx, userID); err != nil {
		s.appCtx.Logger.Warn("last-active bump failed", "user", userID, "err", err)
	}
}
