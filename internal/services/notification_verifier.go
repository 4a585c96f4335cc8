package services

import (
	"context"

	"payment-api/internal/config"
	ierr "payment-api/internal/errors"
	"payment-api/internal/momo"
	"payment-api/pkg/logging"
)

// NotificationState is the furthest step a notification reached
type NotificationState string

const (
	StateReceived          NotificationState = "RECEIVED"
	StateParsed            NotificationState = "PARSED"
	StateSignatureChecked  NotificationState = "SIGNATURE_CHECKED"
	StatePayloadDecoded    NotificationState = "PAYLOAD_DECODED"
	StateDispatched        NotificationState = "DISPATCHED"
	StateRejectedMalformed NotificationState = "REJECTED_MALFORMED"
	StateRejectedUnsigned  NotificationState = "REJECTED_UNSIGNED"
)

// Rejected reports whether the notification was dropped before dispatch
func (s NotificationState) Rejected() bool {
	return s == StateRejectedMalformed || s == StateRejectedUnsigned
}

// Dispatcher applies a verified successful payment
type Dispatcher interface {
	Apply(ctx context.Context, payload *momo.ExtraData, n *momo.Notification) EntitlementResult
}

// VerificationOutcome is the internal record of one notification. It is
// logged and returned for tests; nothing in it reaches the gateway.
type VerificationOutcome struct {
	State        NotificationState
	Err          error
	Notification *momo.Notification
	Payload      *momo.ExtraData
	Duplicate    bool
	Entitlement  *EntitlementResult
}

// NotificationVerifier authenticates IPN bodies and hands paid ones to the dispatcher
type NotificationVerifier struct {
	accessKey  string
	secretKey  string
	dispatcher Dispatcher
	cache      TransactionCache
}

// NewNotificationVerifier creates a verifier; cache may be nil
func NewNotificationVerifier(cfg config.MoMoConfig, dispatcher Dispatcher, cache TransactionCache) *NotificationVerifier {
	return &NotificationVerifier{
		accessKey:  cfg.AccessKey,
		secretKey:  cfg.SecretKey,
		dispatcher: dispatcher,
		cache:      cache,
	}
}

// Process walks one notification through parse, signature check, payload
// decode and dispatch. It never panics on input and never returns an error.
func (v *NotificationVerifier) Process(ctx context.Context, body []byte) VerificationOutcome {
	out := VerificationOutcome{State: StateReceived}

	n, err := momo.ParseNotification(body)
	if err != nil {
		return v.reject(out, StateRejectedMalformed, err)
	}
	out.Notification = n
	out.State = StateParsed

	logging.Infow("momo notification received",
		"order_id", n.OrderID.String(),
		"trans_id", n.TransID.String(),
		"result_code", n.ResultCode.String(),
		"amount", n.Amount.String(),
	)

	if v.accessKey == "" || v.secretKey == "" {
		err := ierr.NewError("momo access key or secret key is not configured").
			Mark(ierr.ErrConfiguration)
		return v.reject(out, StateRejectedUnsigned, err)
	}

	if !momo.VerifyNotification(n, v.accessKey, v.secretKey) {
		err := ierr.NewErrorf("invalid signature for order %s", n.OrderID.String()).
			WithHintf("received %s", logging.Mask(n.Signature.String(), 8)).
			Mark(ierr.ErrSecurity)
		return v.reject(out, StateRejectedUnsigned, err)
	}
	out.State = StateSignatureChecked

	payload, err := momo.DecodeExtraData(n.ExtraData.String())
	if err != nil {
		return v.reject(out, StateRejectedMalformed, err)
	}
	out.Payload = payload
	out.State = StatePayloadDecoded

	if !n.Succeeded() {
		logging.Infow("momo payment not successful, nothing to apply",
			"order_id", n.OrderID.String(),
			"result_code", n.ResultCode.String(),
			"message", n.Message.String(),
			"user_id", payload.PrincipalID,
		)
		return out
	}

	transID := n.TransID.String()
	if v.seen(ctx, transID) {
		out.Duplicate = true
		logging.Infow("transaction already applied, skipping downstream calls", "trans_id", transID)
		return out
	}

	result := v.dispatcher.Apply(ctx, payload, n)
	out.Entitlement = &result
	out.State = StateDispatched

	if result.Settled() {
		v.remember(ctx, transID)
	}
	return out
}

func (v *NotificationVerifier) reject(out VerificationOutcome, state NotificationState, err error) VerificationOutcome {
	out.State = state
	out.Err = err

	fields := []interface{}{"state", state, "error", err}
	if out.Notification != nil {
		fields = append(fields,
			"order_id", out.Notification.OrderID.String(),
			"trans_id", out.Notification.TransID.String(),
		)
	}
	if hint := ierr.Hint(err); hint != "" {
		fields = append(fields, "hint", hint)
	}
	logging.Warnw("momo notification rejected", fields...)
	return out
}

func (v *NotificationVerifier) seen(ctx context.Context, transID string) bool {
	if v.cache == nil {
		return false
	}
	seen, err := v.cache.Seen(ctx, transID)
	if err != nil {
		logging.Warnw("transaction cache lookup failed", "trans_id", transID, "error", err)
		return false
	}
	return seen
}

func (v *NotificationVerifier) remember(ctx context.Context, transID string) {
	if v.cache == nil {
		return
	}
	if err := v.cache.Remember(ctx, transID); err != nil {
		logging.Warnw("failed to cache applied transaction", "trans_id", transID, "error", err)
	}
}
