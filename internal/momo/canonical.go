package momo

import "strings"

// Direction selects which fixed field set a raw signature is built from.
type Direction int

const (
	// DirectionCreation covers the outbound create-payment request
	DirectionCreation Direction = iota
	// DirectionNotification covers the inbound IPN
	DirectionNotification
)

// CreationFields is the signed field order for create-payment requests.
var CreationFields = []string{
	"accessKey",
	"amount",
	"extraData",
	"ipnUrl",
	"orderId",
	"orderInfo",
	"partnerCode",
	"redirectUrl",
	"requestId",
	"requestType",
}

// NotificationFields is the signed field order for IPN bodies.
var NotificationFields = []string{
	"accessKey",
	"amount",
	"extraData",
	"message",
	"orderId",
	"orderInfo",
	"orderType",
	"partnerCode",
	"payType",
	"requestId",
	"responseTime",
	"resultCode",
	"transId",
}

// Fields returns the ordered field names for the direction
func (d Direction) Fields() []string {
	if d == DirectionNotification {
		return NotificationFields
	}
	return CreationFields
}

func (d Direction) String() string {
	if d == DirectionNotification {
		return "notification"
	}
	return "creation"
}

// BuildRawSignature joins the direction's fields as name=value pairs separated by '&'.
// Values are written verbatim and missing fields contribute an empty value, matching
// the gateway's own canonicalization byte for byte.
func BuildRawSignature(dir Direction, values map[string]string) string {
	var sb strings.Builder
	for i, name := range dir.Fields() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(values[name])
	}
	return sb.String()
}

// RawSignature builds the creation-direction canonical message for the request
func (r *CreatePaymentRequest) RawSignature() string {
	return BuildRawSignature(DirectionCreation, map[string]string{
		"accessKey":   r.AccessKey,
		"amount":      r.Amount,
		"extraData":   r.ExtraData,
		"ipnUrl":      r.IPNURL,
		"orderId":     r.OrderID,
		"orderInfo":   r.OrderInfo,
		"partnerCode": r.PartnerCode,
		"redirectUrl": r.RedirectURL,
		"requestId":   r.RequestID,
		"requestType": r.RequestType,
	})
}

// RawSignature rebuilds the notification-direction canonical message. The access
// key is not part of the IPN body and comes from local configuration.
func (n *Notification) RawSignature(accessKey string) string {
	return BuildRawSignature(DirectionNotification, n.signedValues(accessKey))
}

func (n *Notification) signedValues(accessKey string) map[string]string {
	return map[string]string{
		"accessKey":    accessKey,
		"amount":       n.Amount.String(),
		"extraData":    n.ExtraData.String(),
		"message":      n.Message.String(),
		"orderId":      n.OrderID.String(),
		"orderInfo":    n.OrderInfo.String(),
		"orderType":    n.OrderType.String(),
		"partnerCode":  n.PartnerCode.String(),
		"payType":      n.PayType.String(),
		"requestId":    n.RequestID.String(),
		"responseTime": n.ResponseTime.String(),
		"resultCode":   n.ResultCode.String(),
		"transId":      n.TransID.String(),
	}
}
