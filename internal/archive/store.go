// Package archive stores snow profiles in a SQL database through gorm.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/codec"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("profile not found")

// DefaultLimit caps listings that do not set Filter.Limit.
const DefaultLimit = 100

// Store is the profile archive.
type Store struct {
	db *gorm.DB
}

// Open connects to the archive database and migrates its schema. Driver is
// "sqlite" (a file path as dsn) or "postgres".
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		// modernc.org/sqlite registers itself as "sqlite" and needs no cgo.
		dialector = sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn})
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", driver)
	}

	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	log.Infow("opening profile archive", "driver", driver)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("opening %s archive: %w", driver, err)
	}
	return New(db)
}

// New wraps an open gorm handle and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrating archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save stores sp under a new id. Source is free text, usually the file or
// client the document came from.
func (s *Store) Save(ctx context.Context, sp *snowprofile.SnowProfile, source string) (*Record, error) {
	if sp == nil {
		return nil, errors.New("no profile to save")
	}
	doc, err := codec.MarshalMsgpack(sp)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}

	sum := snowprofile.Summarize(sp)
	rec := &Record{
		ID:           uuid.NewString(),
		ProfileID:    sp.ID,
		Source:       source,
		LocationName: sp.Location.Name,
		Latitude:     sp.Location.Latitude,
		Longitude:    sp.Location.Longitude,
		Elevation:    sp.Location.Elevation,
		RecordTime:   recordTime(sp),
		ProfileDepth: sum.ProfileDepth,
		Layers:       sum.Layers,
		Profiles:     sum.Profiles,
		Document:     doc,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	log.Debugw("archived profile", "id", rec.ID, "profile", rec.ProfileID)
	return rec, nil
}

// recordTime is the observation time, or the start of the observation
// period when only a period is known.
func recordTime(sp *snowprofile.SnowProfile) *time.Time {
	if t := sp.Time.RecordTime; t != nil {
		u := t.UTC()
		return &u
	}
	if t := sp.Time.RecordPeriod.Begin; t != nil {
		u := t.UTC()
		return &u
	}
	return nil
}

// Get returns the record with the given id, document included.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", id, err)
	}
	return &rec, nil
}

// Load returns the decoded observation stored under id.
func (s *Store) Load(ctx context.Context, id string) (*snowprofile.SnowProfile, *Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sp, err := codec.UnmarshalMsgpack(rec.Document)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding profile %s: %w", id, err)
	}
	return sp, rec, nil
}

// List returns records matching f, most recent observation first. Documents
// are not loaded.
func (s *Store) List(ctx context.Context, f Filter) ([]Record, error) {
	q := s.db.WithContext(ctx).Model(&Record{}).Omit("document")
	if f.Location != "" {
		q = q.Where("LOWER(location_name) LIKE ?", "%"+strings.ToLower(f.Location)+"%")
	}
	if f.From != nil {
		q = q.Where("record_time >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("record_time <= ?", f.To.UTC())
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var recs []Record
	err := q.Order("record_time DESC").Order("created_at DESC").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return recs, nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Record{})
	if res.Error != nil {
		return fmt.Errorf("deleting profile %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the database connections.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
