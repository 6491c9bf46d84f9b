package listings

import (
	"context"
	"fmt"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"go.uber.org/zap"
)

// Room bucket keys.
const (
	OneRoom        = "1"
	TwoRooms       = "2"
	ThreeRoomsPlus = "3+"
)

// RoomStats aggregates listings with a given number of rooms.
type RoomStats struct {
	Count          int64    `json:"count"`
	AvgPricePerSqm *float64 `json:"avg_ppsqm"`
}

// DistrictStats aggregates a district. Parent districts carry their children.
type DistrictStats struct {
	District       string               `json:"district"`
	Count          int64                `json:"count"`
	AvgPricePerSqm *float64             `json:"avg_ppsqm"`
	Rooms          map[string]RoomStats `json:"rooms"`
	ChildDistricts []DistrictStats      `json:"child_districts,omitempty"`
}

// CityStats aggregates a city. An unknown city has a zero count and a nil average.
type CityStats struct {
	City           string          `json:"city"`
	AvgPricePerSqm *float64        `json:"avg_price_sqm"`
	ListingCount   int64           `json:"listing_count"`
	Districts      []DistrictStats `json:"districts"`
	LastUpdated    string          `json:"last_updated,omitempty"`
}

// CitySummary is one row of the all-cities overview.
type CitySummary struct {
	City           string   `gorm:"column:city" json:"city"`
	AvgPricePerSqm *float64 `gorm:"column:avg_price_sqm" json:"avg_price_sqm"`
	ListingCount   int64    `gorm:"column:listing_count" json:"listing_count"`
}

const aggregateColumns = `COUNT(*) AS count,
	ROUND(AVG(price_per_sqm), 0) AS avg_ppsqm,
	COUNT(CASE WHEN rooms = 1 THEN 1 END) AS room1_count,
	ROUND(AVG(CASE WHEN rooms = 1 THEN price_per_sqm END), 0) AS room1_avg,
	COUNT(CASE WHEN rooms = 2 THEN 1 END) AS room2_count,
	ROUND(AVG(CASE WHEN rooms = 2 THEN price_per_sqm END), 0) AS room2_avg,
	COUNT(CASE WHEN rooms IS NOT NULL AND rooms NOT IN (1, 2) THEN 1 END) AS room3plus_count,
	ROUND(AVG(CASE WHEN rooms IS NOT NULL AND rooms NOT IN (1, 2) THEN price_per_sqm END), 0) AS room3plus_avg`

type aggregateRow struct {
	Name           string   `gorm:"column:name"`
	Count          int64    `gorm:"column:count"`
	AvgPpsqm       *float64 `gorm:"column:avg_ppsqm"`
	Room1Count     int64    `gorm:"column:room1_count"`
	Room1Avg       *float64 `gorm:"column:room1_avg"`
	Room2Count     int64    `gorm:"column:room2_count"`
	Room2Avg       *float64 `gorm:"column:room2_avg"`
	Room3PlusCount int64    `gorm:"column:room3plus_count"`
	Room3PlusAvg   *float64 `gorm:"column:room3plus_avg"`
}

func (r aggregateRow) district() DistrictStats {
	return DistrictStats{
		District:       r.Name,
		Count:          r.Count,
		AvgPricePerSqm: r.AvgPpsqm,
		Rooms: map[string]RoomStats{
			OneRoom:        {Count: r.Room1Count, AvgPricePerSqm: r.Room1Avg},
			TwoRooms:       {Count: r.Room2Count, AvgPricePerSqm: r.Room2Avg},
			ThreeRoomsPlus: {Count: r.Room3PlusCount, AvgPricePerSqm: r.Room3PlusAvg},
		},
	}
}

func (s *Store) aggregate(ctx context.Context, groupBy string, where string, args ...any) ([]aggregateRow, error) {
	var rows []aggregateRow
	err := s.db.WithContext(ctx).Model(&Listing{}).
		Select(groupBy+" AS name, "+aggregateColumns).
		Where(where, args...).
		Group(groupBy).
		Order("avg_ppsqm DESC, name").
		Scan(&rows).Error
	return rows, err
}

// Summary lists every city with its average price per square metre, most
// expensive first.
func (s *Store) Summary(ctx context.Context) ([]CitySummary, error) {
	summaries := []CitySummary{}
	err := s.db.WithContext(ctx).Model(&Listing{}).
		Select("city, ROUND(AVG(price_per_sqm), 0) AS avg_price_sqm, COUNT(*) AS listing_count").
		Group("city").
		Order("avg_price_sqm DESC, city").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarise cities: %w", err)
	}
	return summaries, nil
}

// CityStats returns statistics for city, grouped by parent district with
// room breakdowns and child districts.
func (s *Store) CityStats(ctx context.Context, city string) (CityStats, error) {
	lastUpdated, err := s.LastUpdated(ctx)
	if err != nil {
		return CityStats{}, err
	}

	key := "listings:stats:" + city + ":" + lastUpdated
	if s.cache != nil {
		var cached CityStats
		ok, err := cache.GetJSON(ctx, s.cache, key, &cached)
		if err != nil {
			s.logger.Warn("failed to read cached city stats",
				zap.String("op", "listings.CityStats"),
				zap.Error(err),
			)
		}
		if ok {
			return cached, nil
		}
	}

	stats, err := s.computeCityStats(ctx, city)
	if err != nil {
		return CityStats{}, err
	}
	stats.LastUpdated = lastUpdated

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache city stats",
				zap.String("op", "listings.CityStats"),
				zap.Error(err),
			)
		}
	}
	return stats, nil
}

func (s *Store) computeCityStats(ctx context.Context, city string) (CityStats, error) {
	stats := CityStats{City: city, Districts: []DistrictStats{}}

	var overall struct {
		Count    int64    `gorm:"column:count"`
		AvgPpsqm *float64 `gorm:"column:avg_ppsqm"`
	}
	err := s.db.WithContext(ctx).Model(&Listing{}).
		Select("COUNT(*) AS count, ROUND(AVG(price_per_sqm), 0) AS avg_ppsqm").
		Where("city = ?", city).
		Scan(&overall).Error
	if err != nil {
		return CityStats{}, fmt.Errorf("failed to compute stats for %s: %w", city, err)
	}
	if overall.Count == 0 {
		return stats, nil
	}
	stats.ListingCount = overall.Count
	stats.AvgPricePerSqm = overall.AvgPpsqm

	parents, err := s.aggregate(ctx, "district_parent", "city = ? AND district_parent IS NOT NULL", city)
	if err != nil {
		return CityStats{}, fmt.Errorf("failed to compute district stats for %s: %w", city, err)
	}
	for _, parent := range parents {
		district := parent.district()
		children, err := s.aggregate(ctx, "district", "city = ? AND district_parent = ?", city, parent.Name)
		if err != nil {
			return CityStats{}, fmt.Errorf("failed to compute child districts of %s: %w", parent.Name, err)
		}
		for _, child := range children {
			district.ChildDistricts = append(district.ChildDistricts, child.district())
		}
		stats.Districts = append(stats.Districts, district)
	}
	return stats, nil
}
