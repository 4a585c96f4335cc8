package momo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	ierr "payment-api/internal/errors"
)

// Value is a gateway field that may arrive as a JSON string or a JSON number.
// The literal text is kept untouched so it can be signed exactly as received.
type Value struct {
	raw     string
	present bool
}

// NewValue returns a present value holding s
func NewValue(s string) Value {
	return Value{raw: s, present: true}
}

// UnmarshalJSON accepts strings, numbers and null
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = NewValue(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NewValue(n.String())
		return nil
	default:
		return fmt.Errorf("momo: unsupported field value %s", string(data))
	}
}

// MarshalJSON writes the value as a JSON string
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// String returns the literal text, empty when absent
func (v Value) String() string {
	return v.raw
}

// Present reports whether the field was sent
func (v Value) Present() bool {
	return v.present
}

// Int64 parses the value as a base-10 integer
func (v Value) Int64() (int64, error) {
	return strconv.ParseInt(v.raw, 10, 64)
}

// Notification is the IPN body the gateway posts after a payment attempt
type Notification struct {
	PartnerCode  Value `json:"partnerCode"`
	OrderID      Value `json:"orderId"`
	RequestID    Value `json:"requestId"`
	Amount       Value `json:"amount"`
	OrderInfo    Value `json:"orderInfo"`
	OrderType    Value `json:"orderType"`
	TransID      Value `json:"transId"`
	ResultCode   Value `json:"resultCode"`
	Message      Value `json:"message"`
	PayType      Value `json:"payType"`
	ResponseTime Value `json:"responseTime"`
	ExtraData    Value `json:"extraData"`
	Signature    Value `json:"signature"`
}

// ParseNotification decodes an IPN body and checks the fields the engine relies on.
func ParseNotification(body []byte) (*Notification, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ierr.NewError("empty notification body").Mark(ierr.ErrValidation)
	}

	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, ierr.WithError(err).
			WithMessage("invalid notification body").
			Mark(ierr.ErrValidation)
	}

	required := []struct {
		name  string
		value Value
	}{
		{"partnerCode", n.PartnerCode},
		{"orderId", n.OrderID},
		{"requestId", n.RequestID},
		{"amount", n.Amount},
		{"transId", n.TransID},
		{"resultCode", n.ResultCode},
		{"extraData", n.ExtraData},
		{"signature", n.Signature},
	}
	for _, f := range required {
		if !f.value.Present() {
			return nil, ierr.NewErrorf("notification is missing %s", f.name).Mark(ierr.ErrValidation)
		}
	}

	if _, err := n.ResultCode.Int64(); err != nil {
		return nil, ierr.NewErrorf("notification resultCode %q is not an integer", n.ResultCode.String()).
			Mark(ierr.ErrValidation)
	}
	if _, err := n.Amount.Int64(); err != nil {
		return nil, ierr.NewErrorf("notification amount %q is not an integer", n.Amount.String()).
			Mark(ierr.ErrValidation)
	}

	return &n, nil
}

// Succeeded reports whether the gateway marked the payment as successful.
// resultCode is read from its literal text, so both 0 and "0" qualify.
func (n *Notification) Succeeded() bool {
	code, err := n.ResultCode.Int64()
	return err == nil && code == 0
}

// AmountValue returns the paid amount; ParseNotification guarantees it parses
func (n *Notification) AmountValue() int64 {
	amount, _ := n.Amount.Int64()
	return amount
}

// CreatePaymentRequest is the signed body posted to the gateway create endpoint
type CreatePaymentRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      string `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

// CreatePaymentResponse is the gateway answer to a create request
type CreatePaymentResponse struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	ResponseTime int64  `json:"responseTime"`
	Message      string `json:"message"`
	ResultCode   int    `json:"resultCode"`
	PayURL       string `json:"payUrl"`
	Deeplink     string `json:"deeplink,omitempty"`
	QRCodeURL    string `json:"qrCodeUrl,omitempty"`
}

// GatewayError carries a non-2xx gateway response so it can be passed through
type GatewayError struct {
	StatusCode int
	Body       map[string]interface{}
	RawBody    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("momo gateway returned status %d: %s", e.StatusCode, e.RawBody)
}

// ResultCode returns the gateway resultCode from the error body, or fallback
func (e *GatewayError) ResultCode(fallback int) int {
	if code, ok := e.Body["resultCode"].(float64); ok {
		return int(code)
	}
	return fallback
}

// Message returns the gateway message from the error body, or fallback
func (e *GatewayError) Message(fallback string) string {
	if msg, ok := e.Body["message"].(string); ok && msg != "" {
		return msg
	}
	return fallback
}
