package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"

	"regdesk/internal/adapters/email"
	"regdesk/internal/domain/pricing"
	"regdesk/internal/domain/registration"
)

// ConfirmationDeps holds dependencies for the registration confirmation email.
type ConfirmationDeps struct {
	Sender      email.Sender
	FromAddress string
	ReplyTo     string
	EventName   string
}

// ExecuteSendConfirmation renders and sends the registration confirmation email.
// The body is authored as markdown and rendered to HTML; the markdown source is
// sent as the plain-text alternative.
// PRE: deps.Sender and deps.FromAddress are non-empty
// POST: One email sent to reg.Email, or an error
func ExecuteSendConfirmation(ctx context.Context, reg registration.Registration, deps ConfirmationDeps) error {
	if deps.Sender == nil {
		return fmt.Errorf("email sender is not configured")
	}
	if deps.FromAddress == "" {
		return fmt.Errorf("from address is not configured")
	}

	eventName := deps.EventName
	if eventName == "" {
		eventName = "the event"
	}

	md := confirmationMarkdown(reg, eventName)

	var html strings.Builder
	if err := goldmark.Convert([]byte(md), &html); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	result, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{reg.Email},
		From:    deps.FromAddress,
		ReplyTo: deps.ReplyTo,
		Subject: fmt.Sprintf("Registration confirmed: %s (%s)", eventName, reg.Code),
		HTML:    html.String(),
		Text:    md,
	})
	if err != nil {
		return err
	}

	slog.Info("confirmation_email_sent", "code", reg.Code, "message_id", result.MessageID)
	return nil
}

func confirmationMarkdown(reg registration.Registration, eventName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Thank you for registering, %s!\n\n", reg.FirstName)
	fmt.Fprintf(&b, "Your registration for **%s** has been received.\n\n", eventName)
	fmt.Fprintf(&b, "**Registration code:** `%s`\n\n", reg.Code)
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Tier: %s (%d)\n", tierLabel(reg.Tier), reg.TierFee)
	for _, id := range reg.AddOns.Identifiers() {
		price, _ := pricing.AddOnPrice(id)
		fmt.Fprintf(&b, "- Add-on: %s (%d)\n", addOnLabel(id), price)
	}
	fmt.Fprintf(&b, "\n**Total due:** %d\n\n", reg.TotalAmount)
	if reg.PaymentSlipURL != "" {
		b.WriteString("We have received your payment slip and will verify it shortly.\n")
	} else {
		b.WriteString("Please complete payment and upload your payment slip to confirm your place.\n")
	}
	return b.String()
}

func tierLabel(tier string) string {
	switch tier {
	case pricing.TierEarlyBird:
		return "Early Bird"
	case pricing.TierStandard:
		return "Standard"
	case pricing.TierLate:
		return "Late"
	default:
		return tier
	}
}

func addOnLabel(id string) string {
	switch id {
	case pricing.AddOnPoolsideParty:
		return "Poolside Party"
	case pricing.AddOnCommunityService:
		return "Community Service"
	case pricing.AddOnInstallationBanquet:
		return "Installation Banquet"
	default:
		return id
	}
}
