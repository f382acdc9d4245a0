package db

import (
	"time"
)

// Gender values stored on User.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User table
//
// Indexes:
//   - idx_users_gender_dob(gender, date_of_birth)
//     Serves the discovery gender + age window filter.
//   - last_active / created_at are indexed individually for the two sort keys.
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Gender       string    `gorm:"size:16;not null;index:idx_users_gender_dob,priority:1"`
	DateOfBirth  time.Time `gorm:"not null;index:idx_users_gender_dob,priority:2"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
	LastActive   time.Time `gorm:"index"`
}

// Like is a directed edge: LikerID liked LikeeID.
//
// Composite PK: (LikerID, LikeeID)
//   - At most one edge per ordered pair.
//
// Indexes:
//   - idx_likes_likee(likee_id)
//     Optimizes "who likes me" lookups; outgoing lookups use the PK prefix.
type Like struct {
	LikerID   uint64    `gorm:"primaryKey;autoIncrement:false"`
	LikeeID   uint64    `gorm:"primaryKey;autoIncrement:false;index:idx_likes_likee"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Message is a two-party mail item. Each party hides it independently through
// its own delete flag; the row is removed once both flags would be set.
//
// Indexes:
//   - idx_messages_recipient(recipient_id, recipient_deleted, is_read, sent_at)
//     Inbox and Unread folders.
//   - idx_messages_sender(sender_id, sender_deleted, sent_at)
//     Outbox folder.
type Message struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement"`
	SenderID         uint64     `gorm:"not null;index:idx_messages_sender,priority:1"`
	RecipientID      uint64     `gorm:"not null;index:idx_messages_recipient,priority:1"`
	Content          string     `gorm:"type:text;not null"`
	SentAt           time.Time  `gorm:"not null;index:idx_messages_recipient,priority:4,sort:desc;index:idx_messages_sender,priority:3,sort:desc"`
	IsRead           bool       `gorm:"not null;default:false;index:idx_messages_recipient,priority:3"`
	ReadAt           *time.Time
	SenderDeleted    bool `gorm:"not null;default:false;index:idx_messages_sender,priority:2"`
	RecipientDeleted bool `gorm:"not null;default:false;index:idx_messages_recipient,priority:2"`
}
