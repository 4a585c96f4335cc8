package database

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ierr "payment-api/internal/errors"
	"payment-api/internal/models"
)

// ReconciliationStore persists the entries that need manual follow-up
type ReconciliationStore struct {
	db *gorm.DB
}

// NewReconciliationStore creates a store on top of an open connection
func NewReconciliationStore(db *gorm.DB) *ReconciliationStore {
	return &ReconciliationStore{db: db}
}

// Create inserts a new entry
func (s *ReconciliationStore) Create(ctx context.Context, entry *models.ReconciliationEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return ierr.WithError(err).WithMessage("failed to record reconciliation entry").Mark(ierr.ErrInternal)
	}
	return nil
}

// List returns entries newest first. A nil resolved filter returns every entry.
func (s *ReconciliationStore) List(ctx context.Context, resolved *bool, limit int) ([]models.ReconciliationEntry, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if resolved != nil {
		query = query.Where("resolved = ?", *resolved)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.ReconciliationEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, ierr.WithError(err).WithMessage("failed to list reconciliation entries").Mark(ierr.ErrInternal)
	}
	return entries, nil
}

// Get returns one entry by id
func (s *ReconciliationStore) Get(ctx context.Context, id uint) (*models.ReconciliationEntry, error) {
	var entry models.ReconciliationEntry
	err := s.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ierr.NewErrorf("reconciliation entry %d not found", id).Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).WithMessage("failed to load reconciliation entry").Mark(ierr.ErrInternal)
	}
	return &entry, nil
}

// Resolve marks an entry as handled. Resolving twice keeps the first resolution.
func (s *ReconciliationStore) Resolve(ctx context.Context, id uint, resolvedBy, note string, now time.Time) (*models.ReconciliationEntry, error) {
	var entry models.ReconciliationEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ierr.NewErrorf("reconciliation entry %d not found", id).Mark(ierr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if entry.Resolved {
			return nil
		}

		resolvedAt := now.UTC()
		entry.Resolved = true
		entry.ResolvedBy = resolvedBy
		entry.Note = note
		entry.ResolvedAt = &resolvedAt
		return tx.Save(&entry).Error
	})
	if err != nil {
		if ierr.Is(err, ierr.ErrNotFound) {
			return nil, err
		}
		return nil, ierr.WithError(err).WithMessage("failed to resolve reconciliation entry").Mark(ierr.ErrInternal)
	}
	return &entry, nil
}
