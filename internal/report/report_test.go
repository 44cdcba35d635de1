package report

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leomayn/planner/internal/planner"
	"github.com/leomayn/planner/internal/store"
)

var uuidV4 = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

type fakeScraper struct {
	context string
	called  bool
}

func (f *fakeScraper) CompanyContext(_ context.Context, _ string) string {
	f.called = true
	return f.context
}

type fakeCRM struct {
	mu       sync.Mutex
	created  chan *planner.QualificationData
	enriched chan string
	err      error
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{
		created:  make(chan *planner.QualificationData, 1),
		enriched: make(chan string, 1),
	}
}

func (f *fakeCRM) CreateLead(_ context.Context, q *planner.QualificationData) error {
	f.created <- q
	return f.err
}

func (f *fakeCRM) EnrichLead(_ context.Context, q *planner.QualificationData, _ *planner.DiagnosticData, _ []planner.RankedArchetype, _ *planner.BusinessCase) error {
	f.enriched <- q.Email
	return f.err
}

type fakeMailer struct {
	sent chan string
}

func (f *fakeMailer) SendReportReady(_ context.Context, _, _, _ string, reportID, _ string) error {
	f.sent <- reportID
	return nil
}

type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _, userPrompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, userPrompt)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	resp := ""
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func (f *fakeLLM) Close() error { return nil }

func validRequest() *GenerateRequest {
	return &GenerateRequest{
		Qualification: planner.QualificationData{
			Name:           "Jane Doe",
			Email:          "jane@example.com",
			Company:        "Acme Consulting",
			CompanyWebsite: "https://acme.example.com",
			Role:           "founder-ceo",
			Turnover:       "5m-10m",
			ConsentGiven:   true,
		},
		Diagnostic: planner.DiagnosticData{
			FirmType:       "consultancy",
			TeamSize:       "31-75",
			StrategicFocus: planner.StrategicFocus{Primary: "costs", Secondary: "capacity"},
			PainPoints: []planner.PainPoint{
				{Area: "invoicing", Symptom: "work-about-work"},
				{Area: "reporting", Symptom: "tool-limitation"},
			},
			AIAdoption:       "partial",
			TechEnvironment:  "integrated",
			ProcessKnowledge: "partially-documented",
			DataFoundations:  "strong",
			BillableSplit:    75,
		},
		Sizing: []planner.SizingEntry{
			{ArchetypeID: "time-invoicing", PeopleInvolved: "4-8", WeeklyHours: "5-15", CostPerPerson: "50k-75k"},
			{ArchetypeID: "management-reporting", PeopleInvolved: "1-3", WeeklyHours: "under-5", CostPerPerson: "30k-50k"},
			{ArchetypeID: "client-onboarding", PeopleInvolved: "4-8", WeeklyHours: "5-15", CostPerPerson: "50k-75k"},
		},
	}
}

func newTestAssembler(t *testing.T, opts ...func(*Config)) (*Assembler, *store.MemoryStore, *fakeScraper) {
	t.Helper()
	cat, err := planner.DefaultCatalogue()
	require.NoError(t, err)

	mem := store.NewMemoryStore()
	scraper := &fakeScraper{context: "Company: Acme Consulting"}
	cfg := Config{
		Catalogue: cat,
		Scraper:   scraper,
		Store:     mem,
		BaseURL:   "https://leomayn.com",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg), mem, scraper
}

func TestGenerateProducesAndPersistsReport(t *testing.T) {
	a, mem, scraper := newTestAssembler(t)

	resp, err := a.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Regexp(t, uuidV4, resp.ReportID)
	assert.Equal(t, resp.ReportID, resp.Report.ID)
	assert.True(t, scraper.called)
	assert.Equal(t, "Company: Acme Consulting", resp.Report.CompanyContext)
	assert.NotEmpty(t, resp.Report.GeneratedAt)
	assert.Len(t, resp.Report.Workflows, 3)
	assert.NotZero(t, resp.Report.BusinessCase.TotalAnnualCost)

	stored, err := mem.Get(context.Background(), resp.ReportID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", stored.Email)
	assert.Equal(t, "Acme Consulting", stored.Company)
	assert.Equal(t, resp.Report.ID, stored.Report.ID)
	require.NotNil(t, stored.Qualification)
	require.NotNil(t, stored.Diagnostic)
}

func TestGenerateSkipsScrapeWithoutWebsite(t *testing.T) {
	a, _, scraper := newTestAssembler(t)

	req := validRequest()
	req.Qualification.CompanyWebsite = ""

	resp, err := a.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, scraper.called)
	assert.Empty(t, resp.Report.CompanyContext)
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	a, mem, _ := newTestAssembler(t)

	req := validRequest()
	req.Qualification.Email = "not-an-email"
	_, err := a.Generate(context.Background(), req)
	require.Error(t, err)
	var fe planner.FieldErrors
	require.ErrorAs(t, err, &fe)

	req = validRequest()
	req.Sizing = req.Sizing[:2]
	_, err = a.Generate(context.Background(), req)
	require.Error(t, err)

	// Nothing was persisted on either failure.
	_ = mem
}

func TestGenerateEachCallGetsFreshID(t *testing.T) {
	a, _, _ := newTestAssembler(t)

	first, err := a.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := a.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.ReportID, second.ReportID)
}

func validNarrativeJSON() string {
	workflow := func(id, name, impact, complexity string) string {
		return fmt.Sprintf(`{
			"archetypeId": %q, "name": %q,
			"whyThisMatters": "It matters.",
			"impactPotential": %q, "implementationComplexity": %q,
			"threeConditionsCheck": {"impact": "green", "complexity": "amber", "learning": "green"},
			"currentState": "Manual.", "futureState": "Assisted.",
			"considerations": "Some.", "prerequisites": ["a system"], "pitfalls": ["rushing"]
		}`, id, name, impact, complexity)
	}
	return fmt.Sprintf(`{
		"situationSummary": "Jane, Acme Consulting runs lean.",
		"priorityMapIntro": "Three workflows stand out.",
		"workflows": [%s, %s, %s],
		"quickWins": ["map the workflow"],
		"readiness": {"strengths": ["strong data"], "gaps": ["thin documentation"]},
		"nextSteps": ["pick an owner", "book a session"]
	}`,
		workflow("time-invoicing", "Time tracking and invoicing", "high", "low"),
		workflow("management-reporting", "Management reporting", "medium", "medium"),
		workflow("client-onboarding", "Client onboarding and intake", "low", "high"))
}

func TestGenerateUsesModelNarrative(t *testing.T) {
	llm := &fakeLLM{responses: []string{validNarrativeJSON()}}
	a, _, _ := newTestAssembler(t, func(c *Config) { c.LLM = llm })

	resp, err := a.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "Jane, Acme Consulting runs lean.", resp.Report.SituationSummary)
	assert.Equal(t, "time-invoicing", resp.Report.Workflows[0].ArchetypeID)
	// Metadata is injected server-side regardless of the model output.
	assert.Regexp(t, uuidV4, resp.Report.ID)
	assert.NotZero(t, resp.Report.BusinessCase.TotalAnnualCost)
}

func TestGenerateRetriesThenFallsBack(t *testing.T) {
	llm := &fakeLLM{responses: []string{"not json at all", `{"also": "wrong"}`}}
	a, _, _ := newTestAssembler(t, func(c *Config) { c.LLM = llm })

	resp, err := a.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, llm.calls)
	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[1], "previous response was rejected")
	// Fallback narrative still yields a complete report.
	assert.Len(t, resp.Report.Workflows, 3)
	assert.NotEmpty(t, resp.Report.SituationSummary)
	assert.NotEmpty(t, resp.Report.NextSteps)
}

func TestGenerateDispatchesEmailAndEnrichment(t *testing.T) {
	crmFake := newFakeCRM()
	mailer := &fakeMailer{sent: make(chan string, 1)}
	a, _, _ := newTestAssembler(t, func(c *Config) {
		c.CRM = crmFake
		c.Mailer = mailer
	})

	resp, err := a.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	select {
	case id := <-mailer.sent:
		assert.Equal(t, resp.ReportID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("report email was never dispatched")
	}
	select {
	case email := <-crmFake.enriched:
		assert.Equal(t, "jane@example.com", email)
	case <-time.After(2 * time.Second):
		t.Fatal("crm enrichment was never dispatched")
	}
}

func TestQualify(t *testing.T) {
	crmFake := newFakeCRM()
	a, _, _ := newTestAssembler(t, func(c *Config) { c.CRM = crmFake })

	q := validRequest().Qualification
	ok, err := a.Qualify(context.Background(), &q)
	require.NoError(t, err)
	assert.True(t, ok)

	select {
	case lead := <-crmFake.created:
		assert.Equal(t, "jane@example.com", lead.Email)
	case <-time.After(2 * time.Second):
		t.Fatal("crm lead was never created")
	}

	q.Turnover = "under-1m"
	ok, err = a.Qualify(context.Background(), &q)
	require.NoError(t, err)
	assert.False(t, ok)

	q.Email = ""
	_, err = a.Qualify(context.Background(), &q)
	assert.Error(t, err)
}

func TestScoreValidatesInput(t *testing.T) {
	a, _, _ := newTestAssembler(t)

	d := validRequest().Diagnostic
	res, err := a.Score(&d)
	require.NoError(t, err)
	assert.Len(t, res.TopArchetypes, 3)

	d.PainPoints = nil
	_, err = a.Score(&d)
	assert.Error(t, err)
}

func TestParseNarrative(t *testing.T) {
	rep, err := parseNarrative(validNarrativeJSON())
	require.NoError(t, err)
	assert.Len(t, rep.Workflows, 3)
	assert.Equal(t, planner.ConditionGreen, rep.Workflows[0].ThreeConditionsCheck.Impact)

	_, err = parseNarrative(`{"situationSummary": "x"}`)
	assert.Error(t, err)

	_, err = parseNarrative("nonsense")
	assert.Error(t, err)

	// Booleans in the conditions check are rejected.
	bad := strings.Replace(validNarrativeJSON(), `"impact": "green"`, `"impact": true`, 1)
	_, err = parseNarrative(bad)
	assert.Error(t, err)
}

func TestSanitiseFreeText(t *testing.T) {
	assert.Equal(t, "hello world", sanitiseFreeText("hello\x00 world\x1f"))
	assert.Equal(t, "keep\nnewlines", sanitiseFreeText("keep\nnewlines"))
	long := strings.Repeat("a", 300)
	assert.Len(t, sanitiseFreeText(long), 200)
}

func TestWrapUserContext(t *testing.T) {
	assert.Empty(t, wrapUserContext("label", ""))
	wrapped := wrapUserContext("sizing-note", "some detail")
	assert.Contains(t, wrapped, `<USER_CONTEXT label="sizing-note">`)
	assert.Contains(t, wrapped, "some detail")
	assert.True(t, strings.HasSuffix(wrapped, "</USER_CONTEXT>"))
}

func TestFallbackNarrativeConditions(t *testing.T) {
	cat, err := planner.DefaultCatalogue()
	require.NoError(t, err)

	req := validRequest()
	d := &req.Diagnostic

	a, _, _ := newTestAssembler(t)
	scores := a.engine.Score(d)

	rep := fallbackNarrative(cat, &req.Qualification, d, scores.TopArchetypes)
	require.Len(t, rep.Workflows, 3)

	// partial adoption + integrated environment + 31-75 team with a direct
	// signal match on the top workflow.
	top := rep.Workflows[0]
	assert.Equal(t, planner.ConditionGreen, top.ThreeConditionsCheck.Impact)
	assert.Equal(t, planner.ConditionGreen, top.ThreeConditionsCheck.Complexity)
	assert.Equal(t, planner.ConditionAmber, top.ThreeConditionsCheck.Learning)

	assert.Contains(t, rep.SituationSummary, "Jane Doe")
	assert.Contains(t, rep.SituationSummary, "Acme Consulting")
	assert.NotEmpty(t, rep.Readiness.Strengths)
	assert.NotEmpty(t, rep.NextSteps)
}
