// Package pdf renders stored reports to PDF with a headless browser. Every
// download renders fresh from the stored record; nothing is cached server
// side. Requires Chrome/Chromium to be installed on the system.
package pdf

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/leomayn/planner/internal/planner"
)

// RenderTimeout is the hard ceiling on a single PDF render.
const RenderTimeout = 60 * time.Second

var filenameSanitiser = regexp.MustCompile(`[^A-Za-z0-9]`)

// Filename returns the download filename for a company's report.
func Filename(company string) string {
	return fmt.Sprintf("AI-Deployment-Plan-%s.pdf", filenameSanitiser.ReplaceAllString(company, "-"))
}

// Renderer produces PDF bytes from stored reports.
type Renderer struct {
	timeout time.Duration
}

// NewRenderer returns a renderer with the default timeout ceiling.
func NewRenderer() *Renderer {
	return &Renderer{timeout: RenderTimeout}
}

// Render builds the report HTML and prints it to PDF.
func (r *Renderer) Render(ctx context.Context, rec *planner.StoredReport) ([]byte, error) {
	html, err := buildHTML(rec)
	if err != nil {
		return nil, err
	}
	return r.printToPDF(ctx, html)
}

func (r *Renderer) printToPDF(ctx context.Context, html string) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var pdfBytes []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBytes, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pdf rendering failed: %w", err)
	}
	return pdfBytes, nil
}
