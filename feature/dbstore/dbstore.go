package dbstore

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storesync/core/storage"
)

// entry is one row of the kv_entries table. StoreName scopes multiple
// logical stores onto one table.
type entry struct {
	StoreName  string `gorm:"column:store_name;primaryKey;size:191"`
	EntryKey   string `gorm:"column:entry_key;primaryKey;size:191"`
	EntryValue string `gorm:"column:entry_value;type:text"`
}

func (entry) TableName() string { return "kv_entries" }

// Options configures a database-backed store.
type Options struct {
	// Hub receives this store's change events. Pass the same hub to
	// several stores over one database to relay events between them;
	// nil creates a private hub.
	Hub *storage.Hub
	// SkipMigration leaves table management to the caller.
	SkipMigration bool
	// Logger receives diagnostics for swallowed query failures.
	Logger *zap.Logger
}

// Store is the database-backed storage.Adapter: a flat string map kept in
// a kv_entries table, scoped by store name. The database has no change
// feed of its own, so Subscribe carries writes made through this process;
// changes from other processes surface when a listening engine's owner
// calls Sync.
type Store struct {
	db     *gorm.DB
	name   string
	hub    *storage.Hub
	logger *zap.Logger
}

// New creates a database store named name over db, migrating the
// kv_entries table unless opts.SkipMigration is set.
func New(db *gorm.DB, name string, opts Options) (*Store, error) {
	if db == nil {
		return nil, errors.New("dbstore: db is required")
	}
	if name == "" {
		return nil, errors.New("dbstore: store name is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := opts.Hub
	if hub == nil {
		hub = storage.NewHub(logger)
	}

	if !opts.SkipMigration {
		if err := db.AutoMigrate(&entry{}); err != nil {
			return nil, fmt.Errorf("dbstore: migrate: %w", err)
		}
	}

	return &Store{db: db, name: name, hub: hub, logger: logger}, nil
}

// Get returns the value stored under key. Query failures surface as a
// miss.
func (s *Store) Get(key string) (string, bool) {
	var e entry
	err := s.db.Where("store_name = ? AND entry_key = ?", s.name, key).Take(&e).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("dbstore: read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return e.EntryValue, true
}

// Set upserts key=value.
func (s *Store) Set(key, value string) {
	if existing, ok := s.Get(key); ok && existing == value {
		return
	}

	e := entry{StoreName: s.name, EntryKey: key, EntryValue: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_name"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value"}),
	}).Create(&e).Error
	if err != nil {
		s.logger.Warn("dbstore: write failed", zap.String("key", key), zap.Error(err))
		return
	}

	s.hub.Broadcast(key, false)
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	result := s.db.Where("store_name = ? AND entry_key = ?", s.name, key).Delete(&entry{})
	if result.Error != nil {
		s.logger.Warn("dbstore: remove failed", zap.String("key", key), zap.Error(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		return
	}

	s.hub.Broadcast(key, false)
}

// GetAll returns the full contents of this store. Query failures surface
// as an empty store.
func (s *Store) GetAll() map[string]string {
	var entries []entry
	if err := s.db.Where("store_name = ?", s.name).Find(&entries).Error; err != nil {
		s.logger.Debug("dbstore: bulk read failed", zap.Error(err))
		return map[string]string{}
	}

	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.EntryKey] = e.EntryValue
	}
	return values
}

// SetAll replaces the full contents of this store in one transaction.
func (s *Store) SetAll(values map[string]string) {
	if storage.Equal(s.GetAll(), values) {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_name = ?", s.name).Delete(&entry{}).Error; err != nil {
			return err
		}
		if len(values) == 0 {
			return nil
		}
		entries := make([]entry, 0, len(values))
		for key, value := range values {
			entries = append(entries, entry{StoreName: s.name, EntryKey: key, EntryValue: value})
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		s.logger.Warn("dbstore: bulk write failed", zap.Error(err))
		return
	}

	s.hub.Broadcast("", true)
}

// Clear removes every entry of this store.
func (s *Store) Clear() {
	result := s.db.Where("store_name = ?", s.name).Delete(&entry{})
	if result.Error != nil {
		s.logger.Warn("dbstore: clear failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		return
	}

	s.hub.Broadcast("", true)
}

// Subscribe registers fn for change notifications.
func (s *Store) Subscribe(fn storage.ChangeFunc) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}
