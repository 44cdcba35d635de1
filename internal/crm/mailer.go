package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const resendBaseURL = "https://api.resend.com"

// Mailer delivers the report-ready email with the PDF download link.
type Mailer interface {
	SendReportReady(ctx context.Context, to, name, company, reportID, baseURL string) error
}

// ResendMailer sends mail through the Resend API.
type ResendMailer struct {
	apiKey  string
	from    string
	baseURL string
	http    *http.Client
}

// NewResendMailer returns a mailer, or nil when no API key is configured.
func NewResendMailer(apiKey, from string) *ResendMailer {
	if apiKey == "" {
		return nil
	}
	if from == "" {
		from = "Leomayn <website@leomayn.com>"
	}
	return &ResendMailer{
		apiKey:  apiKey,
		from:    from,
		baseURL: resendBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SendReportReady emails the recipient a link to their rendered PDF.
func (m *ResendMailer) SendReportReady(ctx context.Context, to, name, company, reportID, baseURL string) error {
	payload := map[string]any{
		"from":    m.from,
		"to":      to,
		"subject": fmt.Sprintf("Your AI Deployment Planner: %s", EscapeHTML(company)),
		"html":    reportReadyHTML(name, company, reportID, baseURL),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}

func reportReadyHTML(name, company, reportID, baseURL string) string {
	safeName := EscapeHTML(name)
	safeCompany := EscapeHTML(company)
	pdfURL := fmt.Sprintf("%s/api/planner/pdf/%s", baseURL, reportID)

	return fmt.Sprintf(`
    <div style="font-family: Manrope, sans-serif; max-width: 600px; margin: 0 auto; color: #1a3d56;">
      <div style="padding: 32px 0; border-bottom: 3px solid #f7c9c0;">
        <strong style="font-size: 18px; letter-spacing: 0.12em;">LEOMAYN</strong>
      </div>
      <div style="padding: 32px 0;">
        <p>Hello %s,</p>
        <p>Your AI Deployment Planner report for %s is ready.</p>
        <p><a href="%s" style="display: inline-block; background: #1a3d56; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: 600;">Download your PDF report</a></p>
        <p style="color: #9da7b0; font-size: 14px;">This link will be available for 30 days.</p>
        <hr style="border: none; border-top: 1px solid #e5e5e5; margin: 24px 0;" />
        <p>Want to go deeper? Our Diagnose engagement applies this same methodology with full access to your team and data.</p>
        <p><a href="https://calendly.com/tom-leomayn/30min" style="color: #1a3d56; font-weight: 600;">Book a discovery call</a></p>
      </div>
      <div style="padding: 16px 0; border-top: 1px solid #e5e5e5; font-size: 12px; color: #9da7b0;">
        <p>Leomayn Limited | leomayn.com</p>
      </div>
    </div>
  `, safeName, safeCompany, pdfURL)
}

// LogMailer logs instead of sending, for local development.
type LogMailer struct{}

// SendReportReady logs the delivery that would have happened.
func (LogMailer) SendReportReady(_ context.Context, to, _, company, reportID, _ string) error {
	log.Printf("mailer disabled: would send report %s for %s to %s", reportID, company, to)
	return nil
}
