// Package listings stores scraped property listings and computes price
// statistics per city and district.
package listings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/pkg/datetime"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TimestampLayout is how scraped_at is written.
const TimestampLayout = datetime.TimestampLayout

// Listing is one scraped apartment offer.
type Listing struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	City           string  `gorm:"not null;index" json:"city"`
	District       string  `gorm:"not null" json:"district"`
	DistrictParent string  `gorm:"column:district_parent" json:"district_parent"`
	Area           float64 `gorm:"not null" json:"area"`
	PricePerSqm    float64 `gorm:"column:price_per_sqm;not null" json:"price_per_sqm"`
	Floor          *int    `json:"floor,omitempty"` // 0 is the ground floor
	Rooms          *int    `json:"rooms,omitempty"`
	ScrapedAt      string  `gorm:"column:scraped_at" json:"scraped_at"`
}

// TableName keeps the table shared with the scraper process.
func (Listing) TableName() string {
	return "listings"
}

// Store reads and writes listings in a SQLite database.
type Store struct {
	db       *gorm.DB
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// Open opens (creating if needed) the database at path and migrates the schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open listings database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Listing{}); err != nil {
		return nil, fmt.Errorf("failed to migrate listings database: %w", err)
	}
	logger.Debug("listings database ready",
		zap.String("op", "listings.Open"),
		zap.String("path", path),
	)
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// WithCache caches city statistics in c. Entries are keyed by the latest
// scrape timestamp, so new data is never hidden by a stale entry.
func (s *Store) WithCache(c cache.Cache, ttl time.Duration) *Store {
	s.cache = c
	s.cacheTTL = ttl
	return s
}

// Close closes the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Insert stores listings, stamping those without a scrape time.
func (s *Store) Insert(ctx context.Context, listings ...Listing) error {
	if len(listings) == 0 {
		return nil
	}
	stamp := datetime.FormatTimestamp(s.now())
	for i := range listings {
		listings[i].ID = 0
		if listings[i].ScrapedAt == "" {
			listings[i].ScrapedAt = stamp
		}
		if listings[i].DistrictParent == "" {
			listings[i].DistrictParent = listings[i].District
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(listings, 500).Error; err != nil {
		return fmt.Errorf("failed to insert listings: %w", err)
	}
	return nil
}

// Clear removes every listing.
func (s *Store) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Listing{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear listings: %w", err)
	}
	s.logger.Info("cleared listings", zap.String("op", "listings.Clear"))
	return nil
}

// Cities returns the distinct cities in alphabetical order.
func (s *Store) Cities(ctx context.Context) ([]string, error) {
	cities := []string{}
	err := s.db.WithContext(ctx).Model(&Listing{}).Distinct("city").Order("city").Pluck("city", &cities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

// LastUpdated returns the most recent scrape timestamp, or "" when empty.
func (s *Store) LastUpdated(ctx context.Context) (string, error) {
	var last sql.NullString
	err := s.db.WithContext(ctx).Model(&Listing{}).Select("MAX(scraped_at)").Row().Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to read last update: %w", err)
	}
	return last.String, nil
}
