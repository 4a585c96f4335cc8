package services

import (
	"context"
	"sync"
	"time"

	"payment-api/internal/models"
	"payment-api/internal/momo"
)

type upgradeCall struct {
	EntitlementID string
	PrincipalID   string
}

type fakeEntitlements struct {
	mu    sync.Mutex
	err   error
	calls []upgradeCall
}

func (f *fakeEntitlements) UpgradeFromTrial(_ context.Context, entitlementID, principalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, upgradeCall{entitlementID, principalID})
	return f.err
}

type patchCall struct {
	PrincipalID string
	Patch       models.SubscriptionPatch
}

type fakeSubscriptions struct {
	mu    sync.Mutex
	err   error
	calls []patchCall
}

func (f *fakeSubscriptions) Patch(_ context.Context, principalID string, patch models.SubscriptionPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, patchCall{principalID, patch})
	return f.err
}

type fakeMembership struct {
	tier models.PackageType
	err  error
}

func (f *fakeMembership) CurrentTier(context.Context, string) (models.PackageType, error) {
	return f.tier, f.err
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []models.ReconciliationEntry
}

func (f *fakeJournal) Record(_ context.Context, entry models.ReconciliationEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

type fakeGateway struct {
	req  *momo.CreatePaymentRequest
	resp *momo.CreatePaymentResponse
	err  error
}

func (f *fakeGateway) CreatePayment(_ context.Context, req *momo.CreatePaymentRequest) (*momo.CreatePaymentResponse, error) {
	f.req = req
	return f.resp, f.err
}

type fakeDispatcher struct {
	calls  int
	result EntitlementResult
}

func (f *fakeDispatcher) Apply(context.Context, *momo.ExtraData, *momo.Notification) EntitlementResult {
	f.calls++
	return f.result
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
