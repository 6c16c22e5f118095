package domain

import (
	"strings"
	"time"
)

// Plan is the user's subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanTeam Plan = "team"
)

// User holds account and authentication state.
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Plan           Plan
	CreatedAt      time.Time
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
