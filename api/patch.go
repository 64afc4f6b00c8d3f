package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/philipcowcer-eng/LoadBalance/internal/service"
)

// PATCH bodies are checked for shape here; which fields may change and the
// domain rules on their values are enforced by the service.
const (
	projectPatchSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "project_number": {"type": ["string", "null"]},
    "project_site": {"type": ["string", "null"]},
    "priority": {"type": "string"},
    "status": {"type": "string"},
    "owner_id": {"type": ["string", "null"]},
    "manager_id": {"type": ["string", "null"]},
    "rag_status": {"type": "string"},
    "rag_reason": {"type": ["string", "null"]},
    "percent_complete": {"type": "integer"},
    "business_justification": {"type": ["string", "null"]},
    "start_date": {"type": ["string", "null"]},
    "target_end_date": {"type": ["string", "null"]},
    "workflow_status": {"type": "string"},
    "project_type": {"type": ["string", "null"]},
    "size": {"type": ["string", "null"]},
    "fiscal_year": {"type": ["string", "null"]},
    "device_count": {"type": "integer"},
    "device_type": {"type": ["string", "null"]},
    "latest_status_update": {"type": ["string", "null"]}
  }
}`

	allocationPatchSchema = `{
  "type": "object",
  "properties": {
    "hours_per_week": {"type": "integer"},
    "hours": {"type": "integer"},
    "category": {"type": "string"},
    "day": {"type": "string"},
    "feedback_status": {"type": "string"}
  }
}`

	requirementPatchSchema = `{
  "type": "object",
  "properties": {
    "role": {"type": "string"},
    "hours_per_week": {"type": "integer"},
    "duration_weeks": {"type": ["integer", "null"]}
  }
}`

	devicePatchSchema = `{
  "type": "object",
  "properties": {
    "device_type": {"type": "string"},
    "current_qty": {"type": "integer"},
    "proposed_qty": {"type": "integer"}
  }
}`

	ridPatchSchema = `{
  "type": "object",
  "properties": {
    "type": {"type": "string"},
    "description": {"type": "string"},
    "severity": {"type": ["string", "null"]},
    "owner": {"type": ["string", "null"]},
    "status": {"type": "string"}
  }
}`
)

var (
	projectPatch     = mustSchema(projectPatchSchema)
	allocationPatch  = mustSchema(allocationPatchSchema)
	requirementPatch = mustSchema(requirementPatchSchema)
	devicePatch      = mustSchema(devicePatchSchema)
	ridPatch         = mustSchema(ridPatchSchema)
)

func mustSchema(src string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		panic(fmt.Sprintf("api: bad patch schema: %v", err))
	}
	return rs
}

// decodePatch validates a PATCH body against schema and returns its
// top-level fields. An empty body is an empty patch.
func decodePatch(r *http.Request, schema *jsonschema.Schema) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	keyErrs, err := schema.ValidateBytes(r.Context(), body)
	if err != nil {
		return nil, &service.ValidationError{Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if len(keyErrs) > 0 {
		ke := keyErrs[0]
		return nil, &service.ValidationError{
			Field:   strings.TrimPrefix(ke.PropertyPath, "/"),
			Message: ke.Message,
		}
	}

	patch := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &patch); err != nil {
		return nil, &service.ValidationError{Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return patch, nil
}
