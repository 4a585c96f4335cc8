package services

import (
	"context"
	"time"

	ierr "payment-api/internal/errors"
	"payment-api/internal/models"
	"payment-api/pkg/logging"
)

// ReconciliationJournal records paid notifications whose downstream effects failed
type ReconciliationJournal interface {
	Record(ctx context.Context, entry models.ReconciliationEntry)
}

// ReconciliationRepository is the persistence used by ReconciliationService
type ReconciliationRepository interface {
	Create(ctx context.Context, entry *models.ReconciliationEntry) error
	List(ctx context.Context, resolved *bool, limit int) ([]models.ReconciliationEntry, error)
	Get(ctx context.Context, id uint) (*models.ReconciliationEntry, error)
	Resolve(ctx context.Context, id uint, resolvedBy, note string, now time.Time) (*models.ReconciliationEntry, error)
}

// ReconciliationService persists entries and alerts operators. Both the
// repository and the alerter are optional; failures are logged, never returned,
// since the notification path must not fail because of bookkeeping.
type ReconciliationService struct {
	repo    ReconciliationRepository
	alerter Alerter
	now     func() time.Time
}

// NewReconciliationService creates a journal; repo and alerter may be nil
func NewReconciliationService(repo ReconciliationRepository, alerter Alerter) *ReconciliationService {
	return &ReconciliationService{repo: repo, alerter: alerter, now: time.Now}
}

// Record stores and announces one entry
func (s *ReconciliationService) Record(ctx context.Context, entry models.ReconciliationEntry) {
	// Entries are written even when the notification deadline has passed.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if s.repo != nil {
		if err := s.repo.Create(ctx, &entry); err != nil {
			logging.Errorw("failed to persist reconciliation entry",
				"kind", entry.Kind,
				"trans_id", entry.TransID,
				"error", err,
			)
		}
	}

	if s.alerter != nil {
		if err := s.alerter.Alert(ctx, &entry); err != nil {
			logging.Errorw("failed to send reconciliation alert",
				"kind", entry.Kind,
				"trans_id", entry.TransID,
				"error", err,
			)
		}
	}
}

// List returns entries filtered by resolution state
func (s *ReconciliationService) List(ctx context.Context, resolved *bool, limit int) ([]models.ReconciliationEntry, error) {
	if s.repo == nil {
		return []models.ReconciliationEntry{}, nil
	}
	return s.repo.List(ctx, resolved, limit)
}

// Get returns one entry
func (s *ReconciliationService) Get(ctx context.Context, id uint) (*models.ReconciliationEntry, error) {
	if s.repo == nil {
		return nil, ierr.NewError("reconciliation journal is disabled").Mark(ierr.ErrNotFound)
	}
	return s.repo.Get(ctx, id)
}

// Resolve closes an entry on behalf of an operator
func (s *ReconciliationService) Resolve(ctx context.Context, id uint, resolvedBy, note string) (*models.ReconciliationEntry, error) {
	if s.repo == nil {
		return nil, ierr.NewError("reconciliation journal is disabled").Mark(ierr.ErrNotFound)
	}
	return s.repo.Resolve(ctx, id, resolvedBy, note, s.now())
}
