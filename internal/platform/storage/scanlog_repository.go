package storage

import (
	"context"

	"gorm.io/gorm"

	"tixgate/internal/platform/errors"
)

// ScanLogRepository persists the scan audit trail.
type ScanLogRepository struct {
	db *gorm.DB
}

// NewScanLogRepository creates a repository on the shared database handle.
func NewScanLogRepository(db *gorm.DB) *ScanLogRepository {
	return &ScanLogRepository{db: db}
}

// Append records one scan attempt.
func (r *ScanLogRepository) Append(ctx context.Context, entry *ScanLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "scanlog.append", "failed to append scan log", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (r *ScanLogRepository) Recent(ctx context.Context, limit int) ([]ScanLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []ScanLog
	err := r.db.WithContext(ctx).
		Order("scanned_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "scanlog.recent", "failed to list scan log", err)
	}
	return entries, nil
}
