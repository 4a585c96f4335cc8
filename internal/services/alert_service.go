package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	brevo "github.com/getbrevo/brevo-go/lib"
	"github.com/getsentry/sentry-go"

	"payment-api/internal/models"
	"payment-api/pkg/logging"
)

// Alerter notifies operators that a paid notification needs manual follow-up
type Alerter interface {
	Alert(ctx context.Context, entry *models.ReconciliationEntry) error
}

// BrevoAlerter emails reconciliation alerts through Brevo
type BrevoAlerter struct {
	client    *brevo.APIClient
	fromEmail string
	fromName  string
	to        string
}

// NewBrevoAlerter creates a Brevo email alerter
func NewBrevoAlerter(apiKey, fromEmail, to string) *BrevoAlerter {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)

	return &BrevoAlerter{
		client:    brevo.NewAPIClient(cfg),
		fromEmail: fromEmail,
		fromName:  "Payment Service",
		to:        to,
	}
}

// Alert sends one email per entry
func (b *BrevoAlerter) Alert(ctx context.Context, entry *models.ReconciliationEntry) error {
	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  b.fromName,
			Email: b.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: b.to},
		},
		Subject:     alertSubject(entry),
		HtmlContent: alertHTML(entry),
		TextContent: alertText(entry),
	}

	_, resp, err := b.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send reconciliation email: %w", err)
	}
	if resp != nil && resp.StatusCode >= 300 {
		return fmt.Errorf("brevo returned status %d", resp.StatusCode)
	}

	logging.Infow("reconciliation email sent", "trans_id", entry.TransID, "to", b.to)
	return nil
}

// SentryAlerter reports reconciliation entries as Sentry events
type SentryAlerter struct {
	hub *sentry.Hub
}

// NewSentryAlerter creates an alerter on the given hub, or the current hub when nil
func NewSentryAlerter(hub *sentry.Hub) *SentryAlerter {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryAlerter{hub: hub}
}

// Alert captures a warning-level message tagged with the transaction
func (s *SentryAlerter) Alert(_ context.Context, entry *models.ReconciliationEntry) error {
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTag("reconciliation_kind", entry.Kind)
		scope.SetTag("trans_id", entry.TransID)
		scope.SetTag("package_type", entry.PackageType.String())
		scope.SetExtra("principal_id", entry.PrincipalID)
		scope.SetExtra("upgrade_target_id", entry.UpgradeTargetID)
		scope.SetExtra("amount", entry.Amount)
		scope.SetExtra("error", entry.Error)
		s.hub.CaptureMessage(alertSubject(entry))
	})
	return nil
}

// MultiAlerter fans an alert out to every configured alerter
type MultiAlerter []Alerter

// Alert calls each alerter and returns the first error
func (m MultiAlerter) Alert(ctx context.Context, entry *models.ReconciliationEntry) error {
	var firstErr error
	for _, a := range m {
		if err := a.Alert(ctx, entry); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func alertSubject(entry *models.ReconciliationEntry) string {
	return fmt.Sprintf("MANUAL CHECK REQUIRED: %s for transaction %s", entry.Kind, entry.TransID)
}

func alertText(entry *models.ReconciliationEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Kind: %s\n", entry.Kind)
	fmt.Fprintf(&sb, "TransId: %s\n", entry.TransID)
	fmt.Fprintf(&sb, "OrderId: %s\n", entry.OrderID)
	fmt.Fprintf(&sb, "User: %s\n", entry.PrincipalID)
	fmt.Fprintf(&sb, "Package: %s\n", entry.PackageType)
	fmt.Fprintf(&sb, "Amount: %d\n", entry.Amount)
	if entry.UpgradeTargetID != "" {
		fmt.Fprintf(&sb, "Program: %s\n", entry.UpgradeTargetID)
	}
	fmt.Fprintf(&sb, "Error: %s\n", entry.Error)
	return sb.String()
}

func alertHTML(entry *models.ReconciliationEntry) string {
	return "<pre>" + html.EscapeString(alertText(entry)) + "</pre>"
}
