package report

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/leomayn/planner/internal/planner"
)

//go:embed report_schema.json
var reportSchemaJSON []byte

// parseNarrative validates raw model output against the report schema and
// decodes it. The model must produce exactly three workflows with traffic
// light condition ratings.
func parseNarrative(raw string) (*planner.GeneratedReport, error) {
	schemaLoader := gojsonschema.NewBytesLoader(reportSchemaJSON)
	docLoader := gojsonschema.NewStringLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("narrative was not valid JSON: %w", err)
	}
	if !result.Valid() {
		fe := make(planner.FieldErrors, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			fe[field] = desc.Description()
		}
		return nil, fmt.Errorf("narrative failed schema validation: %w", fe)
	}

	var rep planner.GeneratedReport
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		return nil, fmt.Errorf("failed to decode narrative: %w", err)
	}
	return &rep, nil
}
