// internal/ai/schema.go
package ai

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// intentSchema is the contract the model's intent JSON must satisfy before
// it is mapped into domain types. An unknown metric name fails here.
const intentSchema = `{
  "type": "object",
  "required": ["metric"],
  "properties": {
    "metric": {
      "type": "string",
      "enum": ["pipeline_value", "revenue", "active_projects_value", "sector_breakdown"]
    },
    "sector": {"type": ["string", "null"]},
    "data_source": {
      "type": ["string", "null"],
      "enum": ["deals", "work_orders", null]
    },
    "timeframe": {
      "type": ["object", "null"],
      "required": ["type", "year"],
      "properties": {
        "type": {"type": "string", "enum": ["quarter", "year"]},
        "year": {"type": "integer", "minimum": 2000, "maximum": 2100},
        "quarter": {"type": ["integer", "null"], "minimum": 1, "maximum": 4}
      }
    }
  }
}`

var intentSchemaLoader = gojsonschema.NewStringLoader(intentSchema)

func validateIntentJSON(content string) error {
	result, err := gojsonschema.Validate(intentSchemaLoader, gojsonschema.NewStringLoader(content))
	if err != nil {
		return fmt.Errorf("schema validation: %v", err)
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("intent json invalid: %s", strings.Join(issues, "; "))
	}
	return nil
}
