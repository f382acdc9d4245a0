// Package filter holds the value objects that describe discovery and mailbox queries.
package filter

import "strings"

const (
	DefaultMinAge     = 18
	DefaultMaxAge     = 99
	DefaultPageNumber = 1
)

// SortKey selects the discovery ordering. Unknown keys sort by last activity.
type SortKey string

const (
	SortLastActive SortKey = "lastActive"
	SortCreated    SortKey = "created"
)

// Direction selects which side of the like graph to read.
type Direction int

const (
	// Incoming are the users who like a given user ("likers").
	Incoming Direction = iota
	// Outgoing are the users a given user likes ("likees").
	Outgoing
)

func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}

// ParseDirection accepts "incoming"/"likers" and "outgoing"/"likees".
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incoming", "likers":
		return Incoming, true
	case "outgoing", "likees":
		return Outgoing, true
	}
	return Incoming, false
}

// UserCriteria describes a discovery search made by RequesterID.
//
// Setting both Likers and Likees narrows the result to mutual matches.
type UserCriteria struct {
	RequesterID uint64
	Gender      string
	MinAge      int
	MaxAge      int
	Likers      bool
	Likees      bool
	OrderBy     SortKey
	PageNumber  int
	PageSize    int
}

// NewUserCriteria returns criteria with the default age bounds, sort key and first page.
func NewUserCriteria(requesterID uint64, gender string, pageSize int) UserCriteria {
	return UserCriteria{
		RequesterID: requesterID,
		Gender:      gender,
		MinAge:      DefaultMinAge,
		MaxAge:      DefaultMaxAge,
		OrderBy:     SortLastActive,
		PageNumber:  DefaultPageNumber,
		PageSize:    pageSize,
	}
}

// AgeFilterApplies reports whether the age window takes part in the query.
// The default pair (18, 99) means "no constraint"; any other pair applies the full window.
func (c UserCriteria) AgeFilterApplies() bool {
	return c.MinAge != DefaultMinAge || c.MaxAge != DefaultMaxAge
}

// Folder selects a mailbox view.
type Folder string

const (
	Inbox  Folder = "Inbox"
	Outbox Folder = "Outbox"
	Unread Folder = "Unread"
)

// ParseFolder maps a selector to a Folder; anything unrecognised is Unread.
func ParseFolder(s string) Folder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inbox":
		return Inbox
	case "outbox":
		return Outbox
	default:
		return Unread
	}
}

// MessageCriteria describes a paged mailbox listing for OwnerID.
type MessageCriteria struct {
	OwnerID    uint64
	Folder     Folder
	PageNumber int
	PageSize   int
}

// ClampPageSize applies caller-side paging defaults: zero means def, and sizes
// above max are capped. Negative sizes pass through so the core can reject them.
func ClampPageSize(size, def, max int) int {
	switch {
	case size == 0:
		return def
	case size > max:
		return max
	}
	return size
}

// PageNumberOrDefault maps an unset page number to the first page.
func PageNumberOrDefault(n int) int {
	if n == 0 {
		return DefaultPageNumber
	}
	return n
}
