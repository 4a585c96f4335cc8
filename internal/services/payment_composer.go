package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"

	"payment-api/internal/config"
	ierr "payment-api/internal/errors"
	"payment-api/internal/models"
	"payment-api/internal/momo"
	"payment-api/pkg/logging"
)

// CreatePaymentInput is a customer's purchase request
type CreatePaymentInput struct {
	PrincipalID     string
	Package         models.PackageType
	Amount          *int64
	UpgradeTargetID *string
}

// PaymentComposer builds signed create-payment requests and sends them to the gateway
type PaymentComposer struct {
	cfg        config.MoMoConfig
	gateway    momo.Gateway
	membership MembershipService
	newOrderID func() string
}

// NewPaymentComposer creates a composer; membership may be nil to skip the same-tier check
func NewPaymentComposer(cfg config.MoMoConfig, gateway momo.Gateway, membership MembershipService) *PaymentComposer {
	return &PaymentComposer{
		cfg:        cfg,
		gateway:    gateway,
		membership: membership,
		newOrderID: func() string { return "MOMO" + ulid.Make().String() },
	}
}

// Create validates the input, signs the request and issues it to the gateway
func (c *PaymentComposer) Create(ctx context.Context, in CreatePaymentInput) (*momo.CreatePaymentResponse, error) {
	if in.PrincipalID == "" {
		return nil, ierr.NewError("missing authenticated user").
			WithHint("Unauthorized - User ID not found").
			Mark(ierr.ErrUnauthorized)
	}

	if !in.Package.IsValid() {
		names := lo.Map(models.Packages, func(p models.PackageType, _ int) string { return p.String() })
		return nil, ierr.NewErrorf("invalid package type %q", in.Package).
			WithHintf("Invalid packageType. Must be %s, or %s",
				strings.Join(names[:len(names)-1], ", "), names[len(names)-1]).
			Mark(ierr.ErrValidation)
	}

	amount := in.Package.DefaultAmount()
	if in.Amount != nil {
		if *in.Amount < 0 {
			return nil, ierr.NewErrorf("negative amount %d", *in.Amount).
				WithHint("amount must not be negative").
				Mark(ierr.ErrValidation)
		}
		if *in.Amount > 0 {
			amount = *in.Amount
		}
	}

	if err := c.checkCredentials(); err != nil {
		return nil, err
	}

	if err := c.checkCurrentTier(ctx, in); err != nil {
		return nil, err
	}

	extraData, err := momo.EncodeExtraData(momo.ExtraData{
		PrincipalID:     in.PrincipalID,
		Package:         in.Package,
		UpgradeTargetID: lo.Ternary(in.UpgradeTargetID != nil && *in.UpgradeTargetID != "", in.UpgradeTargetID, nil),
	})
	if err != nil {
		return nil, err
	}

	orderID := c.newOrderID()
	req := &momo.CreatePaymentRequest{
		PartnerCode: c.cfg.PartnerCode,
		AccessKey:   c.cfg.AccessKey,
		RequestID:   orderID,
		Amount:      strconv.FormatInt(amount, 10),
		OrderID:     orderID,
		OrderInfo:   fmt.Sprintf("Goi %s - %s", in.Package, c.cfg.OrderInfoBrand),
		RedirectURL: c.cfg.RedirectURL,
		IPNURL:      c.cfg.IPNURL,
		RequestType: c.cfg.RequestType,
		ExtraData:   extraData,
		Lang:        c.cfg.Lang,
	}
	momo.SignRequest(req, c.cfg.SecretKey)

	logging.Infow("creating momo payment",
		"order_id", orderID,
		"user_id", in.PrincipalID,
		"package", in.Package,
		"amount", amount,
	)

	resp, err := c.gateway.CreatePayment(ctx, req)
	if err != nil {
		logging.Errorw("momo create payment failed", "order_id", orderID, "error", err)
		return nil, err
	}

	if resp.Message == "" {
		resp.Message = "Success"
	}
	return resp, nil
}

func (c *PaymentComposer) checkCredentials() error {
	missing := lo.Filter([]lo.Tuple2[string, string]{
		lo.T2("MOMO_PARTNER_CODE", c.cfg.PartnerCode),
		lo.T2("MOMO_ACCESS_KEY", c.cfg.AccessKey),
		lo.T2("MOMO_SECRET_KEY", c.cfg.SecretKey),
	}, func(t lo.Tuple2[string, string], _ int) bool { return t.B == "" })
	if len(missing) == 0 {
		return nil
	}

	names := lo.Map(missing, func(t lo.Tuple2[string, string], _ int) string { return t.A })
	return ierr.NewErrorf("missing momo credentials: %s", strings.Join(names, ", ")).
		WithHint("Payment service is not configured").
		Mark(ierr.ErrConfiguration)
}

// checkCurrentTier rejects same-tier repurchases. Lookup failures are ignored.
func (c *PaymentComposer) checkCurrentTier(ctx context.Context, in CreatePaymentInput) error {
	if c.membership == nil {
		return nil
	}

	current := Attempt(func() (models.PackageType, error) {
		return c.membership.CurrentTier(ctx, in.PrincipalID)
	})
	if !current.OK() {
		logging.Warnw("could not check current membership", "user_id", in.PrincipalID, "error", current.Err)
	}

	if current.OrElse("") == in.Package {
		return ierr.NewErrorf("user %s already has %s", in.PrincipalID, in.Package).
			WithHintf("You already have %s membership", in.Package).
			Mark(ierr.ErrAlreadyMember)
	}
	return nil
}
