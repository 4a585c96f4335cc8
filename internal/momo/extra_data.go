package momo

import (
	"encoding/base64"
	"encoding/json"

	ierr "payment-api/internal/errors"
	"payment-api/internal/models"
)

// ExtraData is the application payload round-tripped through the gateway.
// UpgradeTargetID is nil when the purchase is a direct subscription.
type ExtraData struct {
	PrincipalID     string             `json:"userId"`
	Package         models.PackageType `json:"packageType"`
	UpgradeTargetID *string            `json:"programId,omitempty"`
}

// HasUpgradeTarget reports whether the payment should also upgrade a trial entitlement
func (e *ExtraData) HasUpgradeTarget() bool {
	return e.UpgradeTargetID != nil && *e.UpgradeTargetID != ""
}

// EncodeExtraData serializes the payload as base64(JSON)
func EncodeExtraData(e ExtraData) (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", ierr.WithError(err).
			WithMessage("failed to encode extra data").
			Mark(ierr.ErrInternal)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeExtraData parses a base64(JSON) token produced by EncodeExtraData.
func DecodeExtraData(token string) (*ExtraData, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("extra data is not valid base64").
			Mark(ierr.ErrDecode)
	}

	var e ExtraData
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, ierr.WithError(err).
			WithMessage("extra data is not valid JSON").
			Mark(ierr.ErrDecode)
	}

	if e.PrincipalID == "" {
		return nil, ierr.NewError("extra data is missing userId").Mark(ierr.ErrDecode)
	}
	if e.Package == "" {
		return nil, ierr.NewError("extra data is missing packageType").Mark(ierr.ErrDecode)
	}
	if !e.Package.IsValid() {
		return nil, ierr.NewErrorf("extra data has unknown packageType %q", e.Package).Mark(ierr.ErrDecode)
	}

	return &e, nil
}
