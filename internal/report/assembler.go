// Package report assembles personalised AI deployment reports: it runs the
// scoring engine, scrapes company context, generates the narrative, and
// persists the result under an opaque identifier.
package report

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leomayn/planner/internal/crm"
	"github.com/leomayn/planner/internal/planner"
	"github.com/leomayn/planner/internal/scoring"
	"github.com/leomayn/planner/internal/store"
)

// ContextScraper yields company context text for a website, "" on failure.
type ContextScraper interface {
	CompanyContext(ctx context.Context, websiteURL string) string
}

// LeadCRM records and enriches leads in the CRM.
type LeadCRM interface {
	CreateLead(ctx context.Context, q *planner.QualificationData) error
	EnrichLead(ctx context.Context, q *planner.QualificationData, d *planner.DiagnosticData, top []planner.RankedArchetype, bc *planner.BusinessCase) error
}

// Config wires the assembler's collaborators. Scraper and Store are
// required; CRM, Mailer, and LLM are optional integrations.
type Config struct {
	Catalogue *planner.Catalogue
	Scraper   ContextScraper
	Store     store.ReportStore
	CRM       LeadCRM
	Mailer    crm.Mailer
	LLM       NarrativeClient
	TTL       time.Duration
	BaseURL   string
}

// Assembler orchestrates report generation end to end.
type Assembler struct {
	cat     *planner.Catalogue
	engine  *scoring.Engine
	scraper ContextScraper
	store   store.ReportStore
	crm     LeadCRM
	mailer  crm.Mailer
	llm     NarrativeClient
	ttl     time.Duration
	baseURL string

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// New returns an assembler for the given configuration.
func New(cfg Config) *Assembler {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = store.DefaultTTL
	}
	mailer := cfg.Mailer
	if mailer == nil {
		mailer = crm.LogMailer{}
	}
	return &Assembler{
		cat:     cfg.Catalogue,
		engine:  scoring.NewEngine(cfg.Catalogue),
		scraper: cfg.Scraper,
		store:   cfg.Store,
		crm:     cfg.CRM,
		mailer:  mailer,
		llm:     cfg.LLM,
		ttl:     ttl,
		baseURL: cfg.BaseURL,
		now:     time.Now,
		newID:   uuid.NewRandom,
	}
}

// Qualify validates the qualification input and returns whether the lead
// proceeds. The CRM lead record is created in the background; its outcome
// never affects the response.
func (a *Assembler) Qualify(ctx context.Context, q *planner.QualificationData) (bool, error) {
	if err := q.Validate(); err != nil {
		return false, err
	}

	if a.crm != nil {
		lead := *q
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := a.crm.CreateLead(ctx, &lead); err != nil {
				log.Printf("crm lead creation failed: %v", err)
			}
		}()
	}
	return q.Qualified(), nil
}

// Score runs the diagnostic through the scoring engine without generating a
// report.
func (a *Assembler) Score(d *planner.DiagnosticData) (*planner.ScoringResult, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	res := a.engine.Score(d)
	return &res, nil
}

// GenerateRequest is the full input for report generation.
type GenerateRequest struct {
	Qualification planner.QualificationData `json:"qualification"`
	Diagnostic    planner.DiagnosticData    `json:"diagnostic"`
	Sizing        []planner.SizingEntry     `json:"sizing"`
}

// Validate checks all three input sections.
func (r *GenerateRequest) Validate() error {
	if err := r.Qualification.Validate(); err != nil {
		return err
	}
	if err := r.Diagnostic.Validate(); err != nil {
		return err
	}
	return planner.ValidateSizing(r.Sizing)
}

// GenerateResponse is the successful generation result.
type GenerateResponse struct {
	ReportID string                   `json:"reportId"`
	Report   *planner.GeneratedReport `json:"report"`
}

// Generate produces a report: deterministic scoring runs synchronously while
// the company site is scraped concurrently, the narrative is generated, and
// the assembled record is persisted once under a fresh identifier. Email and
// CRM enrichment happen after the response, fire-and-forget.
func (a *Assembler) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	q := &req.Qualification
	d := &req.Diagnostic

	var companyContext string
	g, scrapeCtx := errgroup.WithContext(ctx)
	if q.CompanyWebsite != "" {
		g.Go(func() error {
			companyContext = a.scraper.CompanyContext(scrapeCtx, q.CompanyWebsite)
			return nil
		})
	}

	scores := a.engine.Score(d)
	businessCase := a.engine.BusinessCase(req.Sizing, d)

	_ = g.Wait()

	id, err := a.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report id: %w", err)
	}
	reportID := id.String()

	rep := a.narrative(ctx, q, d, req.Sizing, scores.TopArchetypes, &businessCase, scores.AllScores, companyContext)
	rep.ID = reportID
	rep.BusinessCase = businessCase
	rep.CompanyContext = companyContext
	rep.GeneratedAt = a.now().UTC().Format(time.RFC3339)

	rec := &planner.StoredReport{
		Report:         *rep,
		Email:          q.Email,
		Company:        q.Company,
		Name:           q.Name,
		Qualification:  q,
		Diagnostic:     d,
		CompanyContext: companyContext,
		CreatedAt:      a.now().UTC(),
	}
	if err := a.store.Put(ctx, reportID, rec, a.ttl); err != nil {
		// The caller still gets the report; only the download link is lost.
		log.Printf("report persistence failed for %s: %v", reportID, err)
	}

	a.afterGenerate(q, d, scores.TopArchetypes, &businessCase, reportID)

	return &GenerateResponse{ReportID: reportID, Report: rep}, nil
}

// narrative generates the written sections, falling back to the
// catalogue-derived narrative when no model is configured or its output
// fails validation.
func (a *Assembler) narrative(
	ctx context.Context,
	q *planner.QualificationData,
	d *planner.DiagnosticData,
	sizing []planner.SizingEntry,
	top []planner.RankedArchetype,
	bc *planner.BusinessCase,
	allScores map[string]float64,
	companyContext string,
) *planner.GeneratedReport {
	if a.llm == nil {
		return fallbackNarrative(a.cat, q, d, top)
	}

	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	systemPrompt := buildSystemPrompt(a.cat, top, companyContext)
	userPrompt := buildUserPrompt(a.cat, q, d, sizing, top, bc, allScores, companyContext)

	raw, err := a.llm.GenerateJSON(ctx, systemPrompt, userPrompt)
	if err == nil {
		if rep, perr := parseNarrative(raw); perr == nil {
			return rep
		} else {
			err = perr
		}
	}
	log.Printf("narrative generation failed, retrying once: %v", err)

	retryPrompt := userPrompt + "\n\nIMPORTANT: Your previous response was rejected. Return ONLY valid JSON matching the documented structure: exactly 3 workflows, threeConditionsCheck values of \"green\", \"amber\", or \"red\", no markdown, no code fences."
	raw, err = a.llm.GenerateJSON(ctx, systemPrompt, retryPrompt)
	if err == nil {
		if rep, perr := parseNarrative(raw); perr == nil {
			return rep
		} else {
			err = perr
		}
	}
	log.Printf("narrative retry failed, using deterministic fallback: %v", err)
	return fallbackNarrative(a.cat, q, d, top)
}

// afterGenerate dispatches the report-ready email and CRM enrichment in the
// background. Failures are logged and never surfaced.
func (a *Assembler) afterGenerate(q *planner.QualificationData, d *planner.DiagnosticData, top []planner.RankedArchetype, bc *planner.BusinessCase, reportID string) {
	qCopy, dCopy := *q, *d
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := a.mailer.SendReportReady(ctx, qCopy.Email, qCopy.Name, qCopy.Company, reportID, a.baseURL); err != nil {
			log.Printf("report email failed for %s: %v", reportID, err)
		}
		if a.crm != nil {
			if err := a.crm.EnrichLead(ctx, &qCopy, &dCopy, top, bc); err != nil {
				log.Printf("crm enrichment failed for %s: %v", reportID, err)
			}
		}
	}()
}
