package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/leomayn/planner/internal/config"
	"github.com/leomayn/planner/internal/crm"
	"github.com/leomayn/planner/internal/pdf"
	"github.com/leomayn/planner/internal/planner"
	"github.com/leomayn/planner/internal/report"
	"github.com/leomayn/planner/internal/scrape"
	"github.com/leomayn/planner/internal/server"
	"github.com/leomayn/planner/internal/server/ratelimit"
	"github.com/leomayn/planner/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planner API server",
	Long:  `Start an HTTP server exposing the qualification, scoring, report generation, and PDF endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	cat, err := loadCatalogue(cfg.CataloguePath)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var reportStore store.ReportStore
	if cfg.DatabaseURL != "" {
		pg, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		reportStore = pg
	} else {
		log.Printf("DATABASE_URL not set, using in-memory report store")
		reportStore = store.NewMemoryStore()
	}
	defer reportStore.Close()

	var llm report.NarrativeClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := report.NewGeminiNarrativeClient(ctx, cfg.GeminiAPIKey, "")
		if err != nil {
			return fmt.Errorf("failed to create narrative client: %w", err)
		}
		defer gemini.Close()
		llm = gemini
	} else {
		log.Printf("GEMINI_API_KEY not set, reports will use the deterministic narrative")
	}

	var leadCRM report.LeadCRM
	if attio := crm.NewAttioClient(cfg.AttioAPIKey, cfg.AttioLeadsListID); attio != nil {
		leadCRM = attio
	} else {
		log.Printf("Attio credentials not set, CRM integration disabled")
	}

	var mailer crm.Mailer
	if resend := crm.NewResendMailer(cfg.ResendAPIKey, ""); resend != nil {
		mailer = resend
	} else {
		log.Printf("RESEND_API_KEY not set, report emails will be logged only")
	}

	assembler := report.New(report.Config{
		Catalogue: cat,
		Scraper:   scrape.New(),
		Store:     reportStore,
		CRM:       leadCRM,
		Mailer:    mailer,
		LLM:       llm,
		TTL:       cfg.ReportTTL,
		BaseURL:   cfg.BaseURL,
	})

	srv := server.New(server.Config{
		Port:      cfg.Port,
		Assembler: assembler,
		Store:     reportStore,
		Renderer:  pdf.NewRenderer(),
		RateLimit: &ratelimit.Config{
			Enabled:      cfg.RateLimitEnabled,
			DefaultLimit: cfg.RateLimitDefault,
			Window:       cfg.RateLimitWindow,
			PathLimits: map[string]int{
				"/api/planner/generate": cfg.GenerateLimit,
			},
		},
		AllowedOrigins: cfg.AllowedOrigins,
	})

	return srv.Start()
}

func loadCatalogue(path string) (*planner.Catalogue, error) {
	if path != "" {
		cat, err := planner.LoadCatalogue(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalogue from %s: %w", path, err)
		}
		return cat, nil
	}
	return planner.DefaultCatalogue()
}
