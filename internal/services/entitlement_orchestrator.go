package services

import (
	"context"
	"time"

	ierr "payment-api/internal/errors"
	"payment-api/internal/models"
	"payment-api/internal/momo"
	"payment-api/pkg/logging"
)

// EntitlementResult describes what the orchestrator managed to apply
type EntitlementResult struct {
	UpgradeAttempted bool
	UpgradeErr       error
	PatchApplied     bool
	AlreadyApplied   bool
	PatchErr         error
}

// Settled reports whether the subscription record reflects the payment
func (r EntitlementResult) Settled() bool {
	return r.PatchApplied || r.AlreadyApplied
}

// EntitlementOrchestrator applies a verified successful payment downstream:
// an optional trial upgrade, then the subscription patch.
type EntitlementOrchestrator struct {
	entitlements  EntitlementService
	subscriptions SubscriptionService
	journal       ReconciliationJournal
	period        time.Duration
	now           func() time.Time
}

// NewEntitlementOrchestrator creates an orchestrator; journal may be nil
func NewEntitlementOrchestrator(entitlements EntitlementService, subscriptions SubscriptionService, journal ReconciliationJournal, period time.Duration) *EntitlementOrchestrator {
	return &EntitlementOrchestrator{
		entitlements:  entitlements,
		subscriptions: subscriptions,
		journal:       journal,
		period:        period,
		now:           time.Now,
	}
}

// Apply runs both steps in order. It never retries and never returns an error;
// failures end up in the logs and the reconciliation journal.
func (o *EntitlementOrchestrator) Apply(ctx context.Context, payload *momo.ExtraData, n *momo.Notification) EntitlementResult {
	var result EntitlementResult
	transID := n.TransID.String()
	amount := n.AmountValue()

	if payload.HasUpgradeTarget() {
		result.UpgradeAttempted = true
		targetID := *payload.UpgradeTargetID

		logging.Infow("upgrading program from trial",
			"program_id", targetID,
			"user_id", payload.PrincipalID,
			"trans_id", transID,
		)

		if err := o.entitlements.UpgradeFromTrial(ctx, targetID, payload.PrincipalID); err != nil {
			result.UpgradeErr = err
			logging.Errorw("program upgrade failed, continuing with subscription update",
				"program_id", targetID,
				"user_id", payload.PrincipalID,
				"trans_id", transID,
				"error", err,
			)
			o.record(ctx, models.ReconciliationUpgradeFailed, payload, n, err)
		} else {
			logging.Infow("program upgraded from trial", "program_id", targetID, "trans_id", transID)
		}
	}

	patch := models.NewSubscriptionPatch(payload.Package, transID, amount, o.now(), o.period)
	err := o.subscriptions.Patch(ctx, payload.PrincipalID, patch)
	switch {
	case err == nil:
		result.PatchApplied = true
		logging.Infow("subscription updated",
			"user_id", payload.PrincipalID,
			"tier", patch.SubscriptionTier,
			"expires_at", patch.SubscriptionExpiresAt,
			"trans_id", transID,
		)
	case ierr.Is(err, ierr.ErrConflict):
		result.AlreadyApplied = true
		logging.Infow("transaction already processed", "trans_id", transID, "user_id", payload.PrincipalID)
	default:
		result.PatchErr = err
		logging.Errorw("MANUAL CHECK REQUIRED",
			"trans_id", transID,
			"user_id", payload.PrincipalID,
			"package", payload.Package,
			"amount", amount,
			"error", err,
		)
		o.record(ctx, models.ReconciliationPatchFailed, payload, n, err)
	}

	return result
}

func (o *EntitlementOrchestrator) record(ctx context.Context, kind string, payload *momo.ExtraData, n *momo.Notification, cause error) {
	if o.journal == nil {
		return
	}

	entry := models.ReconciliationEntry{
		Kind:        kind,
		TransID:     n.TransID.String(),
		OrderID:     n.OrderID.String(),
		PrincipalID: payload.PrincipalID,
		PackageType: payload.Package,
		Amount:      n.AmountValue(),
		Error:       cause.Error(),
	}
	if payload.UpgradeTargetID != nil {
		entry.UpgradeTargetID = *payload.UpgradeTargetID
	}
	o.journal.Record(ctx, entry)
}
