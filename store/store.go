// Package store persists map documents in sqlite and serves them over a
// small HTTP API. Documents are stored as their canonical JSON interchange
// form; the relational columns exist only for listing.
package store

import (
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gridlock-gg/gridlock/mapdef"
)

// MapRecord is the sqlite row for one map.
type MapRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Mode      string
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is a listing entry.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Mode      string    `json:"mode"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrNotFound is returned for unknown map ids.
var ErrNotFound = errors.New("store: map not found")

// Store wraps the database handle.
type Store struct {
	db  *gorm.DB
	log *logrus.Logger
}

// Open opens (or creates) the sqlite database at path and migrates the
// schema.
func Open(path string, log *logrus.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MapRecord{}); err != nil {
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

// Save validates and upserts a map. Invalid maps are rejected with the
// enumerated missing markers.
func (s *Store) Save(m *mapdef.Map) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := m.Export()
	if err != nil {
		return err
	}
	rec := MapRecord{
		ID:        m.ID,
		Name:      m.Name,
		Mode:      string(m.Mode),
		Data:      data,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	return s.db.Save(&rec).Error
}

// Get loads a map by id.
func (s *Store) Get(id string) (*mapdef.Map, error) {
	var rec MapRecord
	err := s.db.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return mapdef.Load(rec.Data)
}

// GetOrDefault loads a map, falling back to the minimal default map for
// the mode when the load fails. Multiplayer rooms start on the fallback
// rather than not starting at all.
func (s *Store) GetOrDefault(id string, mode mapdef.Mode) *mapdef.Map {
	m, err := s.Get(id)
	if err != nil {
		if s.log != nil {
			s.log.Warnf("store: map %s unavailable (%v), using default", id, err)
		}
		return mapdef.DefaultMap(mode)
	}
	return m
}

// List returns summaries of every stored map, most recently updated first.
func (s *Store) List() ([]Summary, error) {
	var recs []MapRecord
	if err := s.db.Order("updated_at desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Summary{ID: rec.ID, Name: rec.Name, Mode: rec.Mode, UpdatedAt: rec.UpdatedAt})
	}
	return out, nil
}

// Delete removes a map. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) error {
	return s.db.Delete(&MapRecord{}, "id = ?", id).Error
}
