package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPackageType(t *testing.T) {
	tests := []struct {
		pkg    PackageType
		valid  bool
		amount int64
	}{
		{PackageBasic, true, 0},
		{PackageVIP, true, 30000},
		{PackagePremium, true, 50000},
		{PackageType("GOLD"), false, 0},
		{PackageType("vip"), false, 0},
		{PackageType(""), false, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.pkg), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.pkg.IsValid())
			assert.Equal(t, tt.amount, tt.pkg.DefaultAmount())
		})
	}
}

func TestNewSubscriptionPatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 30, 15, 123000000, time.FixedZone("ICT", 7*3600))

	patch := NewSubscriptionPatch(PackagePremium, "4000000001", 50000, now, 30*24*time.Hour)

	assert.Equal(t, PackagePremium, patch.SubscriptionTier)
	assert.Equal(t, "ACTIVE", patch.SubscriptionStatus)
	assert.Equal(t, "MOMO", patch.PaymentMethod)
	assert.Equal(t, "4000000001", patch.LastPaymentID)
	assert.Equal(t, int64(50000), patch.LastPaymentAmount)
	assert.Equal(t, "2026-03-01T01:30:15.123Z", patch.LastPaymentDate)
	assert.Equal(t, "2026-03-31T01:30:15.123Z", patch.SubscriptionExpiresAt)
	assert.Equal(t, patch.SubscriptionExpiresAt, patch.NextBillingDate)
	assert.False(t, patch.AutoRenewal)
}
