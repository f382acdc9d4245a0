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

// MessageRepository provides data access methods for the Message model:
// mailbox folders, threads and the message lifecycle.
type MessageRepository struct {
	db *gorm.DB
	clock
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB, opts ...Option) *MessageRepository {
	return &MessageRepository{db: database, clock: newClock(opts)}
}

// FindMessages returns one page of the owner's folder, newest first.
//
// Behavior:
//   - Inbox hides messages the owner deleted as recipient.
//   - Outbox hides messages the owner deleted as sender.
//   - Unread (also the fallback folder) is Inbox minus read messages.
//
// Example:
//
//	repo.FindMessages(ctx, filter.MessageCriteria{OwnerID: 7, Folder: filter.Inbox, PageNumber: 1, PageSize: 10})
func (r *MessageRepository) FindMessages(ctx context.Context, c filter.MessageCriteria) (*pagination.Page[db.Message], error) {
	query := func(tx *gorm.DB) *gorm.DB {
		return tx.Scopes(InFolder(c.OwnerID, c.Folder), NewestFirst)
	}
	return pagination.Paginate[db.Message](ctx, r.db, query, c.PageNumber, c.PageSize)
}

// FindThread returns the whole conversation between userID and otherUserID as seen by userID.
//
// Messages userID deleted are left out; otherUserID's own view is unaffected.
// The thread is not paged or counted.
func (r *MessageRepository) FindThread(ctx context.Context, userID, otherUserID uint64) ([]db.Message, error) {
	messages := []db.Message{}
	err := r.db.WithContext(ctx).
		Scopes(ThreadOf(userID, otherUserID), NewestFirst).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetMessage loads a single message on behalf of requesterID.
//
// Fails with ErrNotFound when the message is absent or the requester already
// deleted their copy, and with ErrUnauthorized when the requester is not a party.
func (r *MessageRepository) GetMessage(ctx context.Context, messageID, requesterID uint64) (*db.Message, error) {
	var m db.Message
	if err := r.db.WithContext(ctx).First(&m, messageID).Error; err != nil {
		return nil, notFound(err, messageID)
	}

	switch requesterID {
	case m.SenderID:
		if m.SenderDeleted {
			return nil, fmt.Errorf("%w: message %d", svcErr.ErrNotFound, messageID)
		}
	case m.RecipientID:
		if m.RecipientDeleted {
			return nil, fmt.Errorf("%w: message %d", svcErr.ErrNotFound, messageID)
		}
	default:
		return nil, fmt.Errorf("%w: user %d is not a party to message %d", svcErr.ErrUnauthorized, requesterID, messageID)
	}
	return &m, nil
}

// CountUnread returns the size of the owner's Unread folder.
func (r *MessageRepository) CountUnread(ctx context.Context, ownerID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Scopes(InFolder(ownerID, filter.Unread)).
		Count(&count).Error
	return count, err
}

// notFound turns gorm's missing-row error into ErrNotFound for the given message.
func notFound(err error, messageID uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: message %d", svcErr.ErrNotFound, messageID)
	}
	return err
}
