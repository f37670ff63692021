package domain

import (
	"strings"
	"time"
)

// UserProfile mirrors the persisted user document in the profile store.
type UserProfile struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	DisplayName     string
	PhotoURL        string
	CreatedAt       time.Time
	LastLoginAt     time.Time
	LastUpdatedAt   *time.Time
	IsEmailVerified bool
}

// ComposeDisplayName derives the display name from first and last name.
func ComposeDisplayName(firstName, lastName string) string {
	return strings.TrimSpace(firstName + " " + lastName)
}

// SplitDisplayName splits a federated display name into first and last name
// on the first space. A single word becomes the first name.
func SplitDisplayName(displayName string) (firstName, lastName string) {
	trimmed := strings.TrimSpace(displayName)
	if trimmed == "" {
		return "", ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	firstName = parts[0]
	if len(parts) > 1 {
		lastName = strings.TrimSpace(parts[1])
	}
	return firstName, lastName
}

// Completeness scores how much of the profile is filled, as a percentage over
// the four user-facing fields (first name, last name, email, photo).
func (p UserProfile) Completeness() int {
	fields := []string{p.FirstName, p.LastName, p.Email, p.PhotoURL}
	filled := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			filled++
		}
	}
	return int(float64(filled)/float64(len(fields))*100 + 0.5)
}

// ProfilePatch describes a partial profile mutation. Nil fields are left
// untouched by the store.
type ProfilePatch struct {
	FirstName     *string
	LastName      *string
	DisplayName   *string
	PhotoURL      *string
	Email         *string
	LastLoginAt   *time.Time
	LastUpdatedAt *time.Time
}

// IsZero reports whether the patch carries no mutation at all.
func (p ProfilePatch) IsZero() bool {
	return p.FirstName == nil && p.LastName == nil && p.DisplayName == nil &&
		p.PhotoURL == nil && p.Email == nil && p.LastLoginAt == nil && p.LastUpdatedAt == nil
}

// ActivitySummary condenses profile activity for display.
type ActivitySummary struct {
	JoinDate            time.Time
	LastLogin           time.Time
	ProfileCompleteness int
}
