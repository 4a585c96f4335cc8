package models

import (
	"time"
)

const (
	SubscriptionStatusActive = "ACTIVE"
	PaymentMethodMoMo        = "MOMO"
)

// SubscriptionPatch is the document sent to the user service after a paid notification
type SubscriptionPatch struct {
	// Subscription fields
	SubscriptionTier      PackageType `json:"subscriptionTier"`
	SubscriptionStatus    string      `json:"subscriptionStatus"`
	SubscriptionExpiresAt string      `json:"subscriptionExpiresAt"`

	// Payment fields
	PaymentMethod     string `json:"paymentMethod"`
	LastPaymentID     string `json:"lastPaymentId"`
	LastPaymentDate   string `json:"lastPaymentDate"`
	LastPaymentAmount int64  `json:"lastPaymentAmount"`

	// Billing fields
	NextBillingDate string `json:"nextBillingDate"`
	AutoRenewal     bool   `json:"autoRenewal"`
}

// isoMillis matches the millisecond ISO-8601 form the user service stores
const isoMillis = "2006-01-02T15:04:05.000Z"

// NewSubscriptionPatch builds the patch for a payment observed at now
func NewSubscriptionPatch(tier PackageType, transID string, amount int64, now time.Time, period time.Duration) SubscriptionPatch {
	now = now.UTC()
	expiresAt := now.Add(period).Format(isoMillis)

	return SubscriptionPatch{
		SubscriptionTier:      tier,
		SubscriptionStatus:    SubscriptionStatusActive,
		SubscriptionExpiresAt: expiresAt,
		PaymentMethod:         PaymentMethodMoMo,
		LastPaymentID:         transID,
		LastPaymentDate:       now.Format(isoMillis),
		LastPaymentAmount:     amount,
		NextBillingDate:       expiresAt,
		AutoRenewal:           false,
	}
}
