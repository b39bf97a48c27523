package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Enrichment statuses. Transitions are one-way: a record leaves pending for
// completed or failed and never comes back.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Stargazer represents a GitHub user who starred the tracked repository
type Stargazer struct {
	ID         int64  `gorm:"primaryKey;autoIncrement:false"`
	Login      string `gorm:"uniqueIndex"`
	StarredAt  time.Time
	Status     string `gorm:"index;default:pending"`
	EnrichedAt *time.Time
	CreatedAt  time.Time
}

// EnrichedProfile holds the raw and derived profile fields for a stargazer,
// created once when its enrichment completes
type EnrichedProfile struct {
	StargazerID     int64 `gorm:"primaryKey;autoIncrement:false"`
	Name            string
	Email           string
	Bio             string
	Location        string
	Company         string
	Blog            string
	TwitterUsername string
	Country         string
	Employers       datatypes.JSON
	LinkedinURL     string
	WebsiteURL      string
	University      string
	SocialAccounts  datatypes.JSON
	RawProfile      datatypes.JSON
	CreatedAt       time.Time
}
