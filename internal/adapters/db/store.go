package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/just-nibble/stargazer-service/internal/core/domain/entities"
	"github.com/just-nibble/stargazer-service/pkg/config"
)

// ExportRow is one line of the CSV export: a stargazer left-joined with its
// enriched profile
type ExportRow struct {
	Login           string
	StarredAt       time.Time
	Name            string
	Email           string
	Country         string
	Employers       []byte
	LinkedinURL     string
	TwitterUsername string
	WebsiteURL      string
	University      string
	SocialAccounts  []byte
}

// StargazerStore defines the persistence operations used by the services
type StargazerStore interface {
	InsertStargazer(s *entities.Stargazer) error
	ExistingIDs() (map[int64]bool, error)
	CountByStatus(status string) (int64, error)
	SelectPending(limit int, random bool) ([]entities.Stargazer, error)
	CreateProfile(p *entities.EnrichedProfile) error
	MarkStatus(id int64, status string, enrichedAt *time.Time) error
	ExportRows() ([]ExportRow, error)
}

// GormStargazerStore is a GORM-based implementation of StargazerStore
type GormStargazerStore struct {
	db *gorm.DB
}

// NewGormStargazerStore initializes a new GormStargazerStore
func NewGormStargazerStore(db *gorm.DB) *GormStargazerStore {
	return &GormStargazerStore{db: db}
}

// InitDB opens the PostgreSQL connection and migrates the schema
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&entities.Stargazer{}, &entities.EnrichedProfile{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func (s *GormStargazerStore) InsertStargazer(sg *entities.Stargazer) error {
	return s.db.Create(sg).Error
}

// ExistingIDs returns the set of stargazer identifiers already stored
func (s *GormStargazerStore) ExistingIDs() (map[int64]bool, error) {
	var ids []int64
	if err := s.db.Model(&entities.Stargazer{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	known := make(map[int64]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return known, nil
}

func (s *GormStargazerStore) CountByStatus(status string) (int64, error) {
	var count int64
	err := s.db.Model(&entities.Stargazer{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// SelectPending returns up to limit pending stargazers, in random order for
// sampled batches and insertion order otherwise
func (s *GormStargazerStore) SelectPending(limit int, random bool) ([]entities.Stargazer, error) {
	q := s.db.Where("status = ?", entities.StatusPending)
	if random {
		q = q.Order("random()")
	} else {
		q = q.Order("created_at, id")
	}

	var stargazers []entities.Stargazer
	err := q.Limit(limit).Find(&stargazers).Error
	return stargazers, err
}

func (s *GormStargazerStore) CreateProfile(p *entities.EnrichedProfile) error {
	return s.db.Create(p).Error
}

// MarkStatus transitions a pending record to its terminal status. The status
// guard in the WHERE clause keeps completed and failed records immutable.
func (s *GormStargazerStore) MarkStatus(id int64, status string, enrichedAt *time.Time) error {
	return s.db.Model(&entities.Stargazer{}).
		Where("id = ? AND status = ?", id, entities.StatusPending).
		Updates(map[string]interface{}{"status": status, "enriched_at": enrichedAt}).Error
}

// ExportRows joins stargazers with their profiles, most recent star first
func (s *GormStargazerStore) ExportRows() ([]ExportRow, error) {
	var rows []ExportRow
	err := s.db.Raw(`
		SELECT stargazers.login, stargazers.starred_at,
		       enriched_profiles.name, enriched_profiles.email,
		       enriched_profiles.country, enriched_profiles.employers,
		       enriched_profiles.linkedin_url, enriched_profiles.twitter_username,
		       enriched_profiles.website_url, enriched_profiles.university,
		       enriched_profiles.social_accounts
		FROM stargazers
		LEFT JOIN enriched_profiles ON enriched_profiles.stargazer_id = stargazers.id
		ORDER BY stargazers.starred_at DESC
	`).Scan(&rows).Error
	return rows, err
}
