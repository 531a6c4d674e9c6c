package domain

import (
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultModulePoints is credited when a completion does not name a value.
	DefaultModulePoints = 50

	// MaxModulePoints caps what a single completion can be worth.
	MaxModulePoints = 10000

	// MaxStatValue bounds every stats counter so that increments cannot wrap.
	MaxStatValue = 1_000_000_000

	avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="
)

// Stats is the gamification sub-record embedded in every user.
type Stats struct {
	GreenCredits     int      `json:"greenCredits"`
	Level            int      `json:"level"`
	Points           int      `json:"points"`
	ModulesCompleted []string `json:"modulesCompleted"`
}

// DefaultStats is the state a freshly registered user starts from.
func DefaultStats() Stats {
	return Stats{Level: 1, ModulesCompleted: []string{}}
}

// HasCompleted reports whether slug is already in ModulesCompleted.
func (s Stats) HasCompleted(slug string) bool {
	for _, m := range s.ModulesCompleted {
		if m == slug {
			return true
		}
	}
	return false
}

// CanCredit reports whether adding points and credits keeps both counters
// within MaxStatValue.
func (s Stats) CanCredit(points, credits int) bool {
	return points <= MaxStatValue-s.Points && credits <= MaxStatValue-s.GreenCredits
}

// Clone returns a deep copy so callers can mutate the slice freely.
func (s Stats) Clone() Stats {
	out := s
	out.ModulesCompleted = append(make([]string, 0, len(s.ModulesCompleted)), s.ModulesCompleted...)
	return out
}

// GreenCreditsFor returns the credits earned alongside points: 10%, rounded
// half up.
func GreenCreditsFor(points int) int {
	if points <= 0 {
		return 0
	}
	credits := points / 10
	if points%10 >= 5 {
		credits++
	}
	return credits
}

// User models an authenticated actor and their gamification state.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Avatar       string    `json:"avatar,omitempty"`
	Location     string    `json:"location,omitempty"`
	Stats        Stats     `json:"stats"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Revision grows by one on every stats write and guards ReplaceStats.
	Revision int64 `json:"-"`
}

// NormalizeEmail is the canonical form used for storage and lookups, which
// makes email uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AvatarFor derives the deterministic avatar URI for an email.
func AvatarFor(email string) string {
	return avatarBaseURL + url.QueryEscape(email)
}

// CanManageStats is the self-or-government policy guarding stats mutations.
func CanManageStats(actor *User, targetID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == targetID || actor.Role == RoleGovernment
}
