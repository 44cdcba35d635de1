package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/leomayn/planner/internal/planner"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"gbp": func(amount float64) string {
		n := int64(amount)
		negative := n < 0
		if negative {
			n = -n
		}
		digits := fmt.Sprintf("%d", n)
		var sb strings.Builder
		for i, d := range digits {
			if i > 0 && (len(digits)-i)%3 == 0 {
				sb.WriteByte(',')
			}
			sb.WriteRune(d)
		}
		if negative {
			return "-£" + sb.String()
		}
		return "£" + sb.String()
	},
	"hours": func(h float64) string {
		return fmt.Sprintf("%.0f", h)
	},
	"inc": func(i int) int { return i + 1 },
}).Parse(reportHTML))

type templateData struct {
	Report    *planner.GeneratedReport
	Company   string
	Recipient string
}

// buildHTML renders the stored report into the print layout.
func buildHTML(rec *planner.StoredReport) (string, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, templateData{
		Report:    &rec.Report,
		Company:   rec.Company,
		Recipient: rec.Name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render report template: %w", err)
	}
	return buf.String(), nil
}

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: A4; margin: 18mm 16mm; }
  body { font-family: 'Manrope', 'Helvetica Neue', Arial, sans-serif; color: #1a3d56; font-size: 11px; line-height: 1.55; }
  h1 { font-size: 24px; margin: 0 0 4px; }
  h2 { font-size: 15px; margin: 22px 0 8px; border-bottom: 2px solid #f7c9c0; padding-bottom: 4px; }
  h3 { font-size: 12px; margin: 14px 0 4px; }
  .brand { letter-spacing: 0.12em; font-weight: 700; font-size: 13px; padding-bottom: 14px; border-bottom: 3px solid #f7c9c0; margin-bottom: 24px; }
  .meta { color: #9da7b0; font-size: 10px; margin-bottom: 18px; }
  .workflow { page-break-inside: avoid; margin-bottom: 16px; padding: 12px; background: #f9fafb; border-radius: 6px; }
  .conditions span { display: inline-block; padding: 2px 10px; border-radius: 10px; font-size: 9px; font-weight: 600; margin-right: 6px; color: #fff; }
  .green { background: #2e8b57; }
  .amber { background: #d49a2a; }
  .red { background: #c0513f; }
  table { width: 100%; border-collapse: collapse; margin: 8px 0; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #e5e5e5; }
  th { font-size: 10px; text-transform: uppercase; letter-spacing: 0.05em; color: #9da7b0; }
  ul { margin: 4px 0; padding-left: 18px; }
  .context { background: #f9fafb; padding: 10px 12px; border-radius: 6px; font-size: 10px; color: #5a6b78; }
</style>
</head>
<body>
  <div class="brand">LEOMAYN</div>
  <h1>AI Deployment Plan</h1>
  <div class="meta">Prepared for {{.Recipient}} at {{.Company}} &middot; Generated {{.Report.GeneratedAt}}</div>

  <h2>Your situation</h2>
  <p>{{.Report.SituationSummary}}</p>

  <h2>Priority workflows</h2>
  {{if .Report.PriorityMapIntro}}<p>{{.Report.PriorityMapIntro}}</p>{{end}}
  {{range $i, $w := .Report.Workflows}}
  <div class="workflow">
    <h3>{{inc $i}}. {{$w.Name}}</h3>
    <div class="conditions">
      <span class="{{$w.ThreeConditionsCheck.Impact}}">Impact</span>
      <span class="{{$w.ThreeConditionsCheck.Complexity}}">Complexity</span>
      <span class="{{$w.ThreeConditionsCheck.Learning}}">Learning</span>
    </div>
    <p><strong>Why this matters.</strong> {{$w.WhyThisMatters}}</p>
    <p><strong>Impact:</strong> {{$w.ImpactPotential}} &middot; <strong>Complexity:</strong> {{$w.ImplementationComplexity}}</p>
    <p><strong>Today.</strong> {{$w.CurrentState}}</p>
    <p><strong>With AI deployed.</strong> {{$w.FutureState}}</p>
    <p><strong>Considerations.</strong> {{$w.Considerations}}</p>
    {{if $w.Prerequisites}}
    <p><strong>Prerequisites</strong></p>
    <ul>{{range $w.Prerequisites}}<li>{{.}}</li>{{end}}</ul>
    {{end}}
    {{if $w.Pitfalls}}
    <p><strong>Pitfalls to avoid</strong></p>
    <ul>{{range $w.Pitfalls}}<li>{{.}}</li>{{end}}</ul>
    {{end}}
  </div>
  {{end}}

  <h2>Business case</h2>
  <table>
    <tr><th>Workflow</th><th>Annual hours</th><th>Annual cost</th><th>Recovery range</th></tr>
    {{range .Report.BusinessCase.PerArea}}
    <tr>
      <td>{{.ArchetypeID}}</td>
      <td>{{hours .AnnualHours}}</td>
      <td>{{gbp .AnnualCost}}</td>
      <td>{{gbp .RecoveryRange.Low}} &ndash; {{gbp .RecoveryRange.High}}</td>
    </tr>
    {{end}}
    <tr>
      <td><strong>Total</strong></td>
      <td><strong>{{hours .Report.BusinessCase.TotalAnnualHours}}</strong></td>
      <td><strong>{{gbp .Report.BusinessCase.TotalAnnualCost}}</strong></td>
      <td><strong>{{gbp .Report.BusinessCase.ConservativeRecovery.Low}} &ndash; {{gbp .Report.BusinessCase.ConservativeRecovery.High}}</strong></td>
    </tr>
  </table>
  <p>Estimated weekly hours recovered: {{hours .Report.BusinessCase.WeeklyHoursRecovered.Low}} &ndash; {{hours .Report.BusinessCase.WeeklyHoursRecovered.High}}.</p>

  {{if .Report.QuickWins}}
  <h2>Quick wins</h2>
  <ul>{{range .Report.QuickWins}}<li>{{.}}</li>{{end}}</ul>
  {{end}}

  <h2>Readiness</h2>
  <h3>Strengths</h3>
  <ul>{{range .Report.Readiness.Strengths}}<li>{{.}}</li>{{end}}</ul>
  <h3>Gaps to close</h3>
  <ul>{{range .Report.Readiness.Gaps}}<li>{{.}}</li>{{end}}</ul>

  <h2>Next steps</h2>
  <ul>{{range .Report.NextSteps}}<li>{{.}}</li>{{end}}</ul>

  {{if .Report.CompanyContext}}
  <h2>Company context used</h2>
  <div class="context">{{.Report.CompanyContext}}</div>
  {{end}}
</body>
</html>`
