// Package crm pushes planner leads into Attio and sends the report-ready
// email. All calls here are fire-and-forget from the caller's point of view:
// failures are logged, never surfaced to the requester.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leomayn/planner/internal/planner"
)

const attioBaseURL = "https://api.attio.com/v2"

// AttioClient creates and enriches lead records in Attio.
type AttioClient struct {
	apiKey      string
	leadsListID string
	baseURL     string
	http        *http.Client
}

// NewAttioClient returns a client, or nil when credentials are absent so the
// integration stays off.
func NewAttioClient(apiKey, leadsListID string) *AttioClient {
	if apiKey == "" || leadsListID == "" {
		return nil
	}
	return &AttioClient{
		apiKey:      apiKey,
		leadsListID: leadsListID,
		baseURL:     attioBaseURL,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

type attioValues map[string]any

func attioValue(v string) []map[string]any {
	return []map[string]any{{"value": v}}
}

// CreateLead records a new planner lead on the website leads list.
func (c *AttioClient) CreateLead(ctx context.Context, q *planner.QualificationData) error {
	notes := fmt.Sprintf("Role: %s\nTurnover: %s\nConsent: %t at %s\nQualified: %t",
		EscapeHTML(q.DisplayRole()), q.Turnover, q.ConsentGiven,
		time.Now().UTC().Format(time.RFC3339), q.Qualified())

	payload := map[string]any{
		"data": map[string]any{
			"values": attioValues{
				"name":            attioValue(EscapeHTML(q.Name)),
				"email_addresses": []map[string]any{{"email_address": q.Email}},
				"company":         attioValue(EscapeHTML(q.Company)),
				"notes":           attioValue(notes),
				"source":          attioValue("AI Deployment Planner"),
			},
		},
	}

	url := fmt.Sprintf("%s/lists/%s/entries", c.baseURL, c.leadsListID)
	return c.post(ctx, url, payload, nil)
}

// EnrichLead appends the diagnostic outcome to the matching person record.
// Leads with no matching person are left alone.
func (c *AttioClient) EnrichLead(ctx context.Context, q *planner.QualificationData, d *planner.DiagnosticData, top []planner.RankedArchetype, bc *planner.BusinessCase) error {
	painPoints := ""
	for i, p := range d.PainPoints {
		if i > 0 {
			painPoints += ", "
		}
		painPoints += p.Area + ":" + p.Symptom
	}
	archetypes := ""
	for i, a := range top {
		if i > 0 {
			archetypes += ", "
		}
		archetypes += fmt.Sprintf("%s (%g)", a.Name, a.CompositeScore)
	}

	notes := fmt.Sprintf(
		"Diagnostic completed: %s\nFirm type: %s\nTeam size: %s\nStrategic focus: %s (primary), %s (secondary)\nPain points: %s\nProcess knowledge: %s\nData foundations: %s\nAI adoption: %s\nTop archetypes: %s\nAnnual cost: %s\nRecovery range: %s - %s",
		time.Now().UTC().Format(time.RFC3339),
		d.FirmType, d.TeamSize,
		d.StrategicFocus.Primary, d.StrategicFocus.Secondary,
		painPoints, d.ProcessKnowledge, d.DataFoundations, d.AIAdoption,
		archetypes,
		FormatGBP(bc.TotalAnnualCost),
		FormatGBP(bc.ConservativeRecovery.Low), FormatGBP(bc.ConservativeRecovery.High),
	)

	var search struct {
		Data []struct {
			ID struct {
				RecordID string `json:"record_id"`
			} `json:"id"`
		} `json:"data"`
	}
	query := map[string]any{
		"filter": map[string]any{
			"email_addresses": map[string]any{"contains": q.Email},
		},
	}
	if err := c.post(ctx, c.baseURL+"/objects/people/records/query", query, &search); err != nil {
		return err
	}
	if len(search.Data) == 0 {
		return nil
	}

	patch := map[string]any{
		"data": map[string]any{
			"values": attioValues{
				"description": attioValue(notes),
			},
		},
	}
	url := fmt.Sprintf("%s/objects/people/records/%s", c.baseURL, search.Data[0].ID.RecordID)
	return c.send(ctx, http.MethodPatch, url, patch, nil)
}

func (c *AttioClient) post(ctx context.Context, url string, payload any, out any) error {
	return c.send(ctx, http.MethodPost, url, payload, out)
}

func (c *AttioClient) send(ctx context.Context, method, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal attio payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build attio request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("attio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("attio returned %d: %s", resp.StatusCode, msg)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode attio response: %w", err)
		}
	}
	return nil
}
