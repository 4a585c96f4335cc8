package services

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "payment-api/internal/errors"
	"payment-api/internal/models"
	"payment-api/internal/momo"
)

func newTestComposer(gateway momo.Gateway, membership MembershipService) *PaymentComposer {
	c := NewPaymentComposer(testMoMoConfig, gateway, membership)
	c.newOrderID = func() string { return "MOMO01J0000000000000000000000" }
	return c
}

func TestComposerVIPScenario(t *testing.T) {
	gateway := &fakeGateway{resp: &momo.CreatePaymentResponse{
		ResultCode: 0,
		PayURL:     "https://test-payment.momo.vn/pay/1",
		OrderID:    "MOMO01J0000000000000000000000",
		RequestID:  "MOMO01J0000000000000000000000",
	}}

	resp, err := newTestComposer(gateway, nil).Create(context.Background(), CreatePaymentInput{
		PrincipalID: "u1",
		Package:     models.PackageVIP,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://test-payment.momo.vn/pay/1", resp.PayURL)
	assert.Equal(t, "Success", resp.Message)

	req := gateway.req
	require.NotNil(t, req)
	assert.Equal(t, "30000", req.Amount)
	assert.Equal(t, "Goi VIP - LeafLungs", req.OrderInfo)
	assert.Equal(t, req.OrderID, req.RequestID)
	assert.Equal(t, "captureWallet", req.RequestType)
	assert.Equal(t, "vi", req.Lang)
	assert.Equal(t, "eyJ1c2VySWQiOiJ1MSIsInBhY2thZ2VUeXBlIjoiVklQIn0=", req.ExtraData)
	assert.Equal(t, "9eba7ba41b16879c5072b6ed81bf8e37849d8f0f7c47bf0ae1ebaf488a158381", req.Signature)
	assert.True(t, momo.Verify(req.RawSignature(), testMoMoConfig.SecretKey, req.Signature))

	payload, err := momo.DecodeExtraData(req.ExtraData)
	require.NoError(t, err)
	assert.Equal(t, "u1", payload.PrincipalID)
	assert.Nil(t, payload.UpgradeTargetID)
}

func TestComposerAmountAndTarget(t *testing.T) {
	gateway := &fakeGateway{resp: &momo.CreatePaymentResponse{Message: "Thành công."}}

	resp, err := newTestComposer(gateway, nil).Create(context.Background(), CreatePaymentInput{
		PrincipalID:     "u1",
		Package:         models.PackagePremium,
		Amount:          lo.ToPtr(int64(45000)),
		UpgradeTargetID: lo.ToPtr("prog-3"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Thành công.", resp.Message)
	assert.Equal(t, "45000", gateway.req.Amount)

	payload, err := momo.DecodeExtraData(gateway.req.ExtraData)
	require.NoError(t, err)
	require.NotNil(t, payload.UpgradeTargetID)
	assert.Equal(t, "prog-3", *payload.UpgradeTargetID)
}

func TestComposerZeroAmountUsesPriceTable(t *testing.T) {
	gateway := &fakeGateway{resp: &momo.CreatePaymentResponse{}}

	_, err := newTestComposer(gateway, nil).Create(context.Background(), CreatePaymentInput{
		PrincipalID: "u1",
		Package:     models.PackagePremium,
		Amount:      lo.ToPtr(int64(0)),
	})
	require.NoError(t, err)
	assert.Equal(t, "50000", gateway.req.Amount)
}

func TestComposerRejections(t *testing.T) {
	tests := []struct {
		name       string
		in         CreatePaymentInput
		membership MembershipService
		kind       error
		hint       string
	}{
		{
			name: "no principal",
			in:   CreatePaymentInput{Package: models.PackageVIP},
			kind: ierr.ErrUnauthorized,
			hint: "Unauthorized - User ID not found",
		},
		{
			name: "unknown package",
			in:   CreatePaymentInput{PrincipalID: "u1", Package: "GOLD"},
			kind: ierr.ErrValidation,
			hint: "Invalid packageType. Must be BASIC, VIP, or PREMIUM",
		},
		{
			name: "negative amount",
			in:   CreatePaymentInput{PrincipalID: "u1", Package: models.PackageVIP, Amount: lo.ToPtr(int64(-5))},
			kind: ierr.ErrValidation,
			hint: "amount must not be negative",
		},
		{
			name:       "same tier",
			in:         CreatePaymentInput{PrincipalID: "u1", Package: models.PackageVIP},
			membership: &fakeMembership{tier: models.PackageVIP},
			kind:       ierr.ErrAlreadyMember,
			hint:       "You already have VIP membership",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{resp: &momo.CreatePaymentResponse{}}
			_, err := newTestComposer(gateway, tt.membership).Create(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, ierr.Is(err, tt.kind))
			assert.Equal(t, tt.hint, ierr.Hint(err))
			assert.Nil(t, gateway.req)
		})
	}
}

func TestComposerMembershipLookupFailureIsIgnored(t *testing.T) {
	gateway := &fakeGateway{resp: &momo.CreatePaymentResponse{}}
	membership := &fakeMembership{tier: models.PackageVIP, err: ierr.NewError("lookup failed").Mark(ierr.ErrTimeout)}

	_, err := newTestComposer(gateway, membership).Create(context.Background(), CreatePaymentInput{
		PrincipalID: "u1",
		Package:     models.PackageVIP,
	})
	require.NoError(t, err)
	assert.NotNil(t, gateway.req)
}

func TestComposerUpgradeToHigherTier(t *testing.T) {
	gateway := &fakeGateway{resp: &momo.CreatePaymentResponse{}}

	_, err := newTestComposer(gateway, &fakeMembership{tier: models.PackageBasic}).Create(context.Background(), CreatePaymentInput{
		PrincipalID: "u1",
		Package:     models.PackagePremium,
	})
	require.NoError(t, err)
}

func TestComposerMissingCredentials(t *testing.T) {
	cfg := testMoMoConfig
	cfg.SecretKey = ""
	c := NewPaymentComposer(cfg, &fakeGateway{}, nil)

	_, err := c.Create(context.Background(), CreatePaymentInput{PrincipalID: "u1", Package: models.PackageVIP})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.ErrConfiguration))
	assert.Contains(t, err.Error(), "MOMO_SECRET_KEY")
}

func TestComposerPassesGatewayErrorThrough(t *testing.T) {
	gwErr := &momo.GatewayError{StatusCode: 400, Body: map[string]interface{}{"resultCode": float64(22)}}
	gateway := &fakeGateway{err: ierr.WithError(gwErr).Mark(ierr.ErrDownstream)}

	_, err := newTestComposer(gateway, nil).Create(context.Background(), CreatePaymentInput{PrincipalID: "u1", Package: models.PackageVIP})
	require.Error(t, err)

	var got *momo.GatewayError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 400, got.StatusCode)
}
