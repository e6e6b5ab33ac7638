package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Perfume{}, &SearchCache{}, &Shop{}, &Price{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertPerfume inserts or updates a catalog record.
func (d *Database) UpsertPerfume(p *Perfume) error {
	if p == nil {
		return errors.New("perfume is nil")
	}
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return errors.New("perfume id is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "brand", "image", "description", "price",
			"families_json", "ingredients_json", "triggers_json", "pyramid_json",
			"status", "variant", "source", "fragella_id", "updated_at",
		}),
	}).Create(p).Error
}

// ListPerfumes returns all locally persisted catalog records.
func (d *Database) ListPerfumes() ([]Perfume, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	var rows []Perfume
	if err := d.gorm.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountPerfumes returns the number of locally persisted catalog records,
// optionally filtered by source.
func (d *Database) CountPerfumes(source string) (int64, error) {
	var count int64
	query := d.gorm.Model(&Perfume{})
	if source = strings.TrimSpace(source); source != "" {
		query = query.Where("source = ?", source)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetSearchCache returns the cached response for the query when present and
// younger than maxAge.
func (d *Database) GetSearchCache(query string, maxAge time.Duration) (*SearchCache, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return nil, nil
	}
	var entry SearchCache
	err := d.gorm.First(&entry, "query = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(entry.FetchedAt) > maxAge {
		return nil, nil
	}
	return &entry, nil
}

// PutSearchCache stores or refreshes one cached search response.
func (d *Database) PutSearchCache(query, payload string, resultCount int) error {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return errors.New("cache query is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	entry := SearchCache{
		Query:       key,
		PayloadJSON: payload,
		ResultCount: resultCount,
		FetchedAt:   time.Now().UTC(),
	}
	return d.gorm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload_json", "result_count", "fetched_at"}),
	}).Create(&entry).Error
}

// PurgeSearchCache deletes every cached search response and returns how many
// rows were removed.
func (d *Database) PurgeSearchCache() (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := d.gorm.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SearchCache{})
	return result.RowsAffected, result.Error
}

// CountSearchCache returns the number of cached search responses.
func (d *Database) CountSearchCache() (int64, error) {
	var count int64
	if err := d.gorm.Model(&SearchCache{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ActiveShops returns the storefronts participating in price comparison,
// ordered by display rank.
func (d *Database) ActiveShops() ([]Shop, error) {
	var rows []Shop
	if err := d.gorm.Where("active = ?", true).Order("display_rank ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertShop inserts or updates a storefront.
func (d *Database) UpsertShop(shop *Shop) error {
	if shop == nil {
		return errors.New("shop is nil")
	}
	shop.Slug = strings.TrimSpace(shop.Slug)
	if shop.Slug == "" {
		return errors.New("shop slug is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "affiliate_url", "active", "display_rank", "updated_at"}),
	}).Create(shop).Error
}

// PricesForPerfume returns all stored price quotes for a perfume.
func (d *Database) PricesForPerfume(perfumeID string) ([]Price, error) {
	perfumeID = strings.TrimSpace(perfumeID)
	if perfumeID == "" {
		return nil, errors.New("perfume id is required")
	}
	var rows []Price
	if err := d.gorm.Where("perfume_id = ?", perfumeID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertPrice inserts or refreshes a per-shop price quote.
func (d *Database) UpsertPrice(price *Price) error {
	if price == nil {
		return errors.New("price is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "perfume_id"}, {Name: "shop_slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "currency", "updated_at"}),
	}).Create(price).Error
}
