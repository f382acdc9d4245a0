package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/muzz-matching/internal/db"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
)

// State is the deletion state of a message.
//
//	Active ──(one party deletes)──▶ PartiallyDeleted ──(other party deletes)──▶ Purged
//
// Purged messages no longer exist in the store. There is no way back.
type State int

const (
	Active State = iota
	PartiallyDeleted
	Purged
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case PartiallyDeleted:
		return "partially_deleted"
	case Purged:
		return "purged"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StateOf derives the lifecycle state from the two delete flags.
func StateOf(m *db.Message) State {
	switch {
	case m.SenderDeleted && m.RecipientDeleted:
		return Purged
	case m.SenderDeleted || m.RecipientDeleted:
		return PartiallyDeleted
	}
	return Active
}

// softDeleteTransition sets requesterID's own delete flag on m and returns the resulting state.
// Flags only ever go from false to true.
func softDeleteTransition(m *db.Message, requesterID uint64) (State, error) {
	if requesterID != m.SenderID && requesterID != m.RecipientID {
		return StateOf(m), fmt.Errorf("%w: user %d is not a party to message %d", svcErr.ErrUnauthorized, requesterID, m.ID)
	}
	if requesterID == m.SenderID {
		m.SenderDeleted = true
	}
	if requesterID == m.RecipientID {
		m.RecipientDeleted = true
	}
	return StateOf(m), nil
}

// Create stores a new Active, unread message sent now.
// The recipient is assumed to exist; callers check it first.
func (r *MessageRepository) Create(ctx context.Context, senderID, recipientID uint64, content string) (*db.Message, error) {
	m := db.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		SentAt:      r.now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkRead marks a message read on behalf of its recipient.
//
// Behavior:
//   - ErrNotFound for an unknown id, ErrUnauthorized unless requesterID is the recipient.
//   - ErrNotFound once the recipient deleted their copy, as GetMessage reports.
//   - Sets IsRead and ReadAt = now on the first call only; later calls keep the original ReadAt.
//   - Runs as one transaction with the row locked.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, requesterID uint64) (*db.Message, error) {
	var m *db.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = lockMessage(tx, messageID); err != nil {
			return err
		}
		if m.RecipientID != requesterID {
			return fmt.Errorf("%w: only the recipient can mark message %d read", svcErr.ErrUnauthorized, messageID)
		}
		if m.RecipientDeleted {
			return fmt.Errorf("%w: message %d", svcErr.ErrNotFound, messageID)
		}
		if m.IsRead {
			return nil
		}

		readAt := r.now().UTC()
		if err := tx.Model(&db.Message{}).
			Where("id = ?", m.ID).
			Updates(map[string]any{"is_read": true, "read_at": readAt}).Error; err != nil {
			return err
		}
		m.IsRead = true
		m.ReadAt = &readAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SoftDelete hides a message from requesterID and purges it once both parties have done so.
//
// Behavior:
//   - ErrNotFound for an unknown id, ErrUnauthorized unless requesterID is sender or recipient.
//   - Sets the requester's own flag; deleting twice is harmless.
//   - When both flags are set the row is deleted and Purged is returned.
//   - Flags are read and written in one transaction with the row locked, so the
//     purge decision sees both flags consistently.
func (r *MessageRepository) SoftDelete(ctx context.Context, messageID, requesterID uint64) (State, error) {
	var next State
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockMessage(tx, messageID)
		if err != nil {
			return err
		}
		if next, err = softDeleteTransition(m, requesterID); err != nil {
			return err
		}

		if next == Purged {
			return tx.Delete(&db.Message{}, m.ID).Error
		}
		return tx.Model(&db.Message{}).
			Where("id = ?", m.ID).
			Updates(map[string]any{
				"sender_deleted":    m.SenderDeleted,
				"recipient_deleted": m.RecipientDeleted,
			}).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// lockMessage reads a message with a row lock (ignored by SQLite, which serialises writers).
func lockMessage(tx *gorm.DB, messageID uint64) (*db.Message, error) {
	var m db.Message
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, messageID).Error; err != nil {
		return nil, notFound(err, messageID)
	}
	return &m, nil
}
