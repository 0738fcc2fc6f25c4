package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/draftlinestudio/leads-backend/internal/lead"
)

// Role selects which of the two notification emails to render for a
// submission. Both roles render from the same field list so the admin and
// client copies can never drift apart.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// whatHappensNext is the fixed timeline block in the client confirmation.
const whatHappensNext = `What happens next:
1. We review your request within one business day.
2. You receive a detailed proposal and timeline by email.
3. We schedule a short call to align on scope before any work starts.`

// field is one labelled value in the rendered email body.
type field struct {
	label string
	value string
}

// Render builds the subject, HTML body, and plaintext body for one
// notification email. Every non-empty submission field appears verbatim in
// both bodies, plus the submission timestamp.
func Render(role Role, sub lead.Submission) (subject, htmlBody, textBody string) {
	fields := submissionFields(sub)

	switch role {
	case RoleAdmin:
		subject = adminSubject(sub)
		htmlBody = adminHTML(sub, fields)
		textBody = renderTextFields(fields)
	case RoleClient:
		subject = clientSubject(sub)
		htmlBody = clientHTML(sub, fields)
		textBody = clientText(sub, fields)
	}
	return subject, htmlBody, textBody
}

// submissionFields flattens a submission into the ordered label/value list
// both templates render from. Empty optional fields are omitted.
func submissionFields(sub lead.Submission) []field {
	add := func(dst []field, label, value string) []field {
		if value == "" {
			return dst
		}
		return append(dst, field{label: label, value: value})
	}

	var fs []field
	fs = add(fs, "Name", sub.Name)
	fs = add(fs, "Email", sub.Email)
	fs = add(fs, "Phone", sub.Phone)
	fs = add(fs, "Company", sub.Company)
	fs = add(fs, "Country", sub.Country)
	fs = add(fs, "Industry", sub.Industry)

	if sub.Kind == lead.KindContact {
		fs = add(fs, "Subject", sub.Subject)
		fs = add(fs, "Message", sub.Message)
		fs = add(fs, "Preferred contact", sub.PreferredContact)
	} else {
		fs = add(fs, "Project type", sub.ProjectType)
		fs = add(fs, "Budget", sub.Budget)
		fs = add(fs, "Timeline", sub.Timeline)
		fs = add(fs, "Description", sub.Description)
		fs = add(fs, "Features", strings.Join(sub.Features, ", "))
		if sub.FinalPrice > 0 {
			fs = add(fs, "Estimated price", fmt.Sprintf("$%d", sub.FinalPrice))
		}
	}

	fs = add(fs, "Submitted", sub.SubmittedAt.Format(time.RFC1123))
	fs = add(fs, "Submission ID", sub.ID.String())
	return fs
}

// ─── SUBJECTS ─────────────────────────────────────────────────────────────────

func adminSubject(sub lead.Submission) string {
	if sub.Kind == lead.KindContact {
		return fmt.Sprintf("New contact message from %s", sub.Name)
	}
	return fmt.Sprintf("New project estimate request from %s", sub.Name)
}

func clientSubject(sub lead.Submission) string {
	if sub.Kind == lead.KindContact {
		return "We received your message"
	}
	return "Your project estimate request is in"
}

// ─── HTML BODIES ──────────────────────────────────────────────────────────────

func adminHTML(sub lead.Submission, fields []field) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2 style="margin-bottom: 8px;">%s</h2>
  <table style="border-collapse: collapse; width: 100%%;">
%s  </table>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 32px 0;">
  <p style="color: #9ca3af; font-size: 12px;">
    Draftline Studio · automated lead notification
  </p>
</body>
</html>`, html.EscapeString(adminSubject(sub)), renderHTMLRows(fields))
}

func clientHTML(sub lead.Submission, fields []field) string {
	intro := "Thanks for getting in touch. Here is a copy of what you sent us:"
	if sub.Kind == lead.KindQuote {
		intro = "Thanks for requesting an estimate. Here is a summary of your request:"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2 style="margin-bottom: 8px;">%s</h2>
  <p>Hello %s,</p>
  <p>%s</p>
  <table style="border-collapse: collapse; width: 100%%;">
%s  </table>
  <p style="margin-top: 24px; white-space: pre-line; color: #374151;">%s</p>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 32px 0;">
  <p style="color: #9ca3af; font-size: 12px;">
    Draftline Studio · reply to this email if anything looks wrong
  </p>
</body>
</html>`,
		html.EscapeString(clientSubject(sub)),
		html.EscapeString(sub.Name),
		intro,
		renderHTMLRows(fields),
		html.EscapeString(whatHappensNext),
	)
}

func renderHTMLRows(fields []field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b,
			"    <tr><td style=\"padding: 6px 12px 6px 0; color: #6b7280; vertical-align: top;\">%s</td>"+
				"<td style=\"padding: 6px 0;\">%s</td></tr>\n",
			html.EscapeString(f.label), html.EscapeString(f.value))
	}
	return b.String()
}

// ─── PLAINTEXT BODIES ─────────────────────────────────────────────────────────

func renderTextFields(fields []field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	return b.String()
}

func clientText(sub lead.Submission, fields []field) string {
	return fmt.Sprintf("Hello %s,\n\nThanks for reaching out. Here is what you sent us:\n\n%s\n%s\n",
		sub.Name, renderTextFields(fields), whatHappensNext)
}

// ─── PAYMENT RECEIPT ──────────────────────────────────────────────────────────

// RenderReceipt builds the post-payment confirmation email sent from the
// Stripe webhook handler. amountCents is the charged amount in cents.
func RenderReceipt(name, description string, amountCents int64) (subject, htmlBody, textBody string) {
	amount := fmt.Sprintf("$%.2f", float64(amountCents)/100)
	subject = "Your payment was received"

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2 style="margin-bottom: 8px;">Payment Confirmed</h2>
  <p>Hello %s,</p>
  <p>We have received your payment of <strong>%s</strong> for:</p>
  <p style="color: #374151;">%s</p>
  <p>Your project kickoff email follows within one business day.</p>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 32px 0;">
  <p style="color: #9ca3af; font-size: 12px;">
    Draftline Studio · reply to this email if anything looks wrong
  </p>
</body>
</html>`, html.EscapeString(name), amount, html.EscapeString(description))

	textBody = fmt.Sprintf("Hello %s,\n\nWe received your payment of %s for: %s\n\nYour project kickoff email follows within one business day.\n",
		name, amount, description)
	return subject, htmlBody, textBody
}
