package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/filter"
)

// Scope is one composable query step. Steps are chained with (*gorm.DB).Scopes.
type Scope = func(*gorm.DB) *gorm.DB

// --- discovery steps ---

// ExcludeUser drops the requester from discovery results.
func ExcludeUser(userID uint64) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("users.id <> ?", userID)
	}
}

// WithGender keeps users of exactly the given gender.
func WithGender(gender string) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("users.gender = ?", gender)
	}
}

// AgeWindow maps integer age bounds to the inclusive birth-date range
// [today-(maxAge+1) years, today-minAge years].
func AgeWindow(today time.Time, minAge, maxAge int) (earliest, latest time.Time) {
	return today.AddDate(-(maxAge + 1), 0, 0), today.AddDate(-minAge, 0, 0)
}

// BornBetween keeps users whose birth date falls on or between the two dates.
// The upper bound covers the whole day so stored times of day do not matter.
func BornBetween(earliest, latest time.Time) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("users.date_of_birth >= ? AND users.date_of_birth < ?", earliest, latest.AddDate(0, 0, 1))
	}
}

// RelatedTo keeps users connected to userID in the given like direction.
// Applying it for both directions yields the intersection.
func RelatedTo(userID uint64, dir filter.Direction) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("users.id IN (?)", likeIDs(tx, userID, dir))
	}
}

// OrderUsersBy sorts newest accounts first for SortCreated, otherwise most recently active first.
func OrderUsersBy(key filter.SortKey) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		if key == filter.SortCreated {
			return tx.Order("users.created_at DESC").Order("users.id DESC")
		}
		return tx.Order("users.last_active DESC").Order("users.id DESC")
	}
}

// DiscoveryPipeline lists the discovery steps for c in their fixed order:
// requester exclusion, gender, age window (skipped for the default bounds),
// relationship restriction, sort.
func DiscoveryPipeline(c filter.UserCriteria, today time.Time) []Scope {
	steps := []Scope{
		ExcludeUser(c.RequesterID),
		WithGender(c.Gender),
	}
	if c.AgeFilterApplies() {
		steps = append(steps, BornBetween(AgeWindow(today, c.MinAge, c.MaxAge)))
	}
	if c.Likers {
		steps = append(steps, RelatedTo(c.RequesterID, filter.Incoming))
	}
	if c.Likees {
		steps = append(steps, RelatedTo(c.RequesterID, filter.Outgoing))
	}
	return append(steps, OrderUsersBy(c.OrderBy))
}

// --- mailbox steps ---

// InFolder restricts messages to the owner's folder view.
//
//   - Inbox:  received, not deleted by the recipient.
//   - Outbox: sent, not deleted by the sender.
//   - Unread and anything else: received, not deleted by the recipient, not read.
func InFolder(ownerID uint64, folder filter.Folder) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		switch folder {
		case filter.Inbox:
			return tx.Where("recipient_id = ? AND recipient_deleted = ?", ownerID, false)
		case filter.Outbox:
			return tx.Where("sender_id = ? AND sender_deleted = ?", ownerID, false)
		default:
			return tx.Where("recipient_id = ? AND recipient_deleted = ? AND is_read = ?", ownerID, false, false)
		}
	}
}

// ThreadOf keeps the messages of the userID/otherUserID conversation that userID still sees.
func ThreadOf(userID, otherUserID uint64) Scope {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(
			"(recipient_id = ? AND sender_id = ? AND recipient_deleted = ?) OR (recipient_id = ? AND sender_id = ? AND sender_deleted = ?)",
			userID, otherUserID, false,
			otherUserID, userID, false,
		)
	}
}

// NewestFirst orders messages by send time, newest first.
func NewestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("sent_at DESC").Order("id DESC")
}
