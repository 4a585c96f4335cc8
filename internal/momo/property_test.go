package momo

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"payment-api/internal/models"
)

func TestCreationSignatureRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("signed creation requests verify", prop.ForAll(
		func(orderID, principal string, amount int64, pkg models.PackageType, secret string) bool {
			extra, err := EncodeExtraData(ExtraData{PrincipalID: principal, Package: pkg})
			if err != nil {
				return false
			}
			req := &CreatePaymentRequest{
				PartnerCode: "MOMO",
				AccessKey:   testAccessKey,
				RequestID:   orderID,
				OrderID:     orderID,
				Amount:      strconv.FormatInt(amount, 10),
				OrderInfo:   "Goi " + pkg.String() + " - LeafLungs",
				RedirectURL: "https://app.example.com/payment/result",
				IPNURL:      "https://api.example.com/api/payments/momo/ipn",
				RequestType: "captureWallet",
				ExtraData:   extra,
			}
			SignRequest(req, secret)

			rebuilt := *req
			return Verify(rebuilt.RawSignature(), secret, req.Signature)
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.Int64Range(0, 100000000),
		gen.OneConstOf(models.PackageBasic, models.PackageVIP, models.PackagePremium),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestNotificationTamperSensitivity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("changing any signed field breaks the signature", prop.ForAll(
		func(orderID, transID, message string, field int) bool {
			n := &Notification{
				PartnerCode:  NewValue("MOMO"),
				OrderID:      NewValue(orderID),
				RequestID:    NewValue(orderID),
				Amount:       NewValue("50000"),
				OrderInfo:    NewValue("Goi PREMIUM - LeafLungs"),
				OrderType:    NewValue("momo_wallet"),
				TransID:      NewValue(transID),
				ResultCode:   NewValue("0"),
				Message:      NewValue(message),
				PayType:      NewValue("qr"),
				ResponseTime: NewValue("1733445600000"),
				ExtraData:    NewValue("eyJ1c2VySWQiOiJ1MSJ9"),
			}
			SignNotification(n, testAccessKey, testSecretKey)
			if !VerifyNotification(n, testAccessKey, testSecretKey) {
				return false
			}

			name := NotificationFields[field]
			if name == "accessKey" {
				return !VerifyNotification(n, testAccessKey+"x", testSecretKey)
			}
			tamperField(n, name)
			return !VerifyNotification(n, testAccessKey, testSecretKey)
		},
		gen.Identifier(),
		gen.NumString(),
		gen.AlphaString(),
		gen.IntRange(0, len(NotificationFields)-1),
	))

	properties.TestingRun(t)
}

func TestExtraDataCodecRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(p)) == p", prop.ForAll(
		func(principal string, pkg models.PackageType, target *string) bool {
			in := ExtraData{PrincipalID: principal, Package: pkg, UpgradeTargetID: target}
			token, err := EncodeExtraData(in)
			if err != nil {
				return false
			}
			out, err := DecodeExtraData(token)
			if err != nil {
				return false
			}
			if (target == nil) != (out.UpgradeTargetID == nil) {
				return false
			}
			return reflect.DeepEqual(in, *out)
		},
		gen.Identifier(),
		gen.OneConstOf(models.PackageBasic, models.PackageVIP, models.PackagePremium),
		gen.PtrOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// tamperField appends a character to the named signed field
func tamperField(n *Notification, name string) {
	fields := map[string]*Value{
		"amount":       &n.Amount,
		"extraData":    &n.ExtraData,
		"message":      &n.Message,
		"orderId":      &n.OrderID,
		"orderInfo":    &n.OrderInfo,
		"orderType":    &n.OrderType,
		"partnerCode":  &n.PartnerCode,
		"payType":      &n.PayType,
		"requestId":    &n.RequestID,
		"responseTime": &n.ResponseTime,
		"resultCode":   &n.ResultCode,
		"transId":      &n.TransID,
	}
	v := fields[name]
	*v = NewValue(v.String() + "x")
}
