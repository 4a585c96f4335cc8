// Command ipnsign builds a MoMo IPN signed with the configured keys and
// prints it, or posts it to a running server. It is meant for local testing
// of the notification endpoint.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"payment-api/internal/config"
	"payment-api/internal/models"
	"payment-api/internal/momo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	var (
		userID     = flag.String("user", "test-user-123", "principal id carried in extraData")
		pkg        = flag.String("package", string(models.PackagePremium), "package type: BASIC, VIP or PREMIUM")
		programID  = flag.String("program", "", "program to upgrade from trial")
		amount     = flag.Int64("amount", 0, "amount in VND, defaults to the package price")
		resultCode = flag.Int("result", 0, "gateway resultCode")
		transID    = flag.String("trans", "", "gateway transaction id, defaults to a timestamp")
		partner    = flag.String("partner", cfg.MoMo.PartnerCode, "partner code")
		accessKey  = flag.String("access-key", cfg.MoMo.AccessKey, "access key")
		secretKey  = flag.String("secret-key", cfg.MoMo.SecretKey, "secret key")
		target     = flag.String("post", "", "IPN url to post the notification to")
	)
	flag.Parse()

	packageType := models.PackageType(*pkg)
	if !packageType.IsValid() {
		log.Fatalf("invalid package %q", *pkg)
	}
	if *amount == 0 {
		*amount = packageType.DefaultAmount()
	}

	extra := momo.ExtraData{PrincipalID: *userID, Package: packageType}
	if *programID != "" {
		extra.UpgradeTargetID = programID
	}
	token, err := momo.EncodeExtraData(extra)
	if err != nil {
		log.Fatal("Failed to encode extraData:", err)
	}

	now := time.Now()
	orderID := fmt.Sprintf("MOMO%d", now.UnixMilli())
	if *transID == "" {
		*transID = strconv.FormatInt(now.UnixNano(), 10)
	}

	n := &momo.Notification{
		PartnerCode:  momo.NewValue(*partner),
		OrderID:      momo.NewValue(orderID),
		RequestID:    momo.NewValue(orderID),
		Amount:       momo.NewValue(strconv.FormatInt(*amount, 10)),
		OrderInfo:    momo.NewValue(fmt.Sprintf("Goi %s - %s", packageType, cfg.MoMo.OrderInfoBrand)),
		OrderType:    momo.NewValue("momo_wallet"),
		TransID:      momo.NewValue(*transID),
		ResultCode:   momo.NewValue(strconv.Itoa(*resultCode)),
		Message:      momo.NewValue("Successful."),
		PayType:      momo.NewValue("qr"),
		ResponseTime: momo.NewValue(strconv.FormatInt(now.UnixMilli(), 10)),
		ExtraData:    momo.NewValue(token),
	}
	momo.SignNotification(n, *accessKey, *secretKey)

	body, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		log.Fatal("Failed to marshal notification:", err)
	}

	if *target == "" {
		fmt.Println(string(body))
		return
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(*target, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal("Failed to post notification:", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Fprintf(os.Stdout, "%s %s\n", resp.Status, respBody)
}
