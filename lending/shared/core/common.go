package core

import (
	"regexp"
	"strings"
	"time"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// EntryTypeString represents the type identifier of a ledger event
type EntryTypeString = string

// OccurredAt represents when something happened in the ledger
type OccurredAt = time.Time

// emailRX is the email shape the lending desk has always accepted: something@something.something without whitespace.
var emailRX = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

// IsWellFormedEmail reports whether email has a plausible address shape.
func IsWellFormedEmail(email string) bool {
	return emailRX.MatchString(email)
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
