package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tixgate/internal/domain/session/model"
	"tixgate/internal/platform/storage"
)

// sessionRecordID pins the single credential row per terminal.
const sessionRecordID = 1

type sqliteStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewSQLite builds a sqlite-backed session store.
func NewSQLite(db *gorm.DB, cfg Config) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite store requires database handle")
	}
	return &sqliteStore{
		db:  db,
		ttl: cfg.TTL,
	}, nil
}

func (s *sqliteStore) Save(ctx context.Context, cred model.Credential) error {
	now := time.Now()
	if cred.SavedAt.IsZero() {
		cred.SavedAt = now
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", sessionRecordID).Delete(&storage.SessionRecord{}).Error; err != nil {
			return err
		}
		record := &storage.SessionRecord{
			ID:           sessionRecordID,
			AccessToken:  cred.AccessToken,
			RefreshToken: cred.RefreshToken,
			Role:         cred.Role,
			UserName:     cred.UserName,
			SavedAt:      cred.SavedAt,
		}
		return tx.Create(record).Error
	})
}

func (s *sqliteStore) Load(ctx context.Context) (model.Credential, bool, error) {
	var record storage.SessionRecord
	err := s.db.WithContext(ctx).Where("id = ?", sessionRecordID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Credential{}, false, nil
	}
	if err != nil {
		return model.Credential{}, false, err
	}
	if s.ttl > 0 && time.Since(record.SavedAt) > s.ttl {
		return model.Credential{}, false, nil
	}
	return model.Credential{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		Role:         record.Role,
		UserName:     record.UserName,
		SavedAt:      record.SavedAt,
	}, true, nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("id = ?", sessionRecordID).Delete(&storage.SessionRecord{}).Error
}

func (s *sqliteStore) Close(context.Context) error {
	return nil
}
