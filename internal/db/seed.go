package db

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	applog "github.com/oggyb/muzz-matching/internal/logger"
)

// passwordCost is lowered by tests; bcrypt at DefaultCost is slow.
var passwordCost = bcrypt.DefaultCost

// SeedTestData resets the database and populates it with demo users, likes and messages.
//
// Behavior:
//  1. Clears existing data in `messages`, `likes` and `users` tables.
//  2. Creates 20 users (10 male, 10 female) aged 18..60 with hashed passwords.
//  3. Each user likes ~6 random users of the other gender; every 3rd like is made mutual.
//  4. Every mutual pair exchanges a short conversation, some of it already read.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	// --- Fresh start ---
	for _, table := range []string{"messages", "likes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE messages AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('messages', 'users')")
	}

	applog.Info("cleared existing data")

	// --- Seed Users (10 male, 10 female) ---
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), passwordCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		gender := GenderMale
		if i > 10 {
			gender = GenderFemale
		}

		age := 18 + r.Intn(43)
		user := User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Gender:       gender,
			DateOfBirth:  dateOnly(now).AddDate(-age, 0, -r.Intn(365)),
			CreatedAt:    now.Add(-time.Duration(500+r.Intn(2000)) * time.Hour),
			LastActive:   now.Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}
	applog.Info("seeded users", "count", len(users))

	// --- Seed Likes ---
	var mutual [][2]uint64
	counter := 0
	for _, liker := range users {
		for j := 0; j < 6; j++ {
			likee := users[r.Intn(len(users))]
			if likee.ID == liker.ID || likee.Gender == liker.Gender {
				continue
			}

			edges := []Like{{LikerID: liker.ID, LikeeID: likee.ID}}
			if counter%3 == 0 {
				edges = append(edges, Like{LikerID: likee.ID, LikeeID: liker.ID})
				mutual = append(mutual, [2]uint64{liker.ID, likee.ID})
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}
			counter++
		}
	}
	applog.Info("seeded likes", "rounds", counter, "mutual", len(mutual))

	// --- Seed Messages between mutual likes ---
	for _, pair := range mutual {
		for k := 0; k < 4; k++ {
			sender, recipient := pair[0], pair[1]
			if k%2 == 1 {
				sender, recipient = recipient, sender
			}
			sentAt := now.Add(-time.Duration(4-k) * time.Hour)
			msg := Message{
				SenderID:    sender,
				RecipientID: recipient,
				Content:     fmt.Sprintf("hello #%d from user %d", k+1, sender),
				SentAt:      sentAt,
			}
			if k < 2 {
				readAt := sentAt.Add(10 * time.Minute)
				msg.IsRead = true
				msg.ReadAt = &readAt
			}
			if err := db.Create(&msg).Error; err != nil {
				return fmt.Errorf("failed to seed message: %w", err)
			}
		}
	}
	applog.Info("seeded messages", "pairs", len(mutual))

	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
