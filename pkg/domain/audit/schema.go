package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// EventSchemaJSON is the JSON schema a pushed audit frame must satisfy.
const EventSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "action"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "ts": { "type": "number" },
    "actor": { "type": "string" },
    "action": { "type": "string", "minLength": 1 },
    "payload": { "type": ["object", "null"] },
    "hash": { "type": ["string", "null"] },
    "prev_hash": { "type": ["string", "null"] }
  }
}`

var eventSchemaLoader = gojsonschema.NewStringLoader(EventSchemaJSON)

// SchemaError lists the schema violations of a rejected document.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	return "audit event does not match schema: " + strings.Join(e.Issues, "; ")
}

// Decode validates a decoded JSON value against the event schema and converts
// it into an Event.
func Decode(v any) (Event, error) {
	result, err := gojsonschema.Validate(eventSchemaLoader, gojsonschema.NewGoLoader(v))
	if err != nil {
		return Event{}, fmt.Errorf("validate audit event: %w", err)
	}
	if !result.Valid() {
		se := &SchemaError{}
		for _, desc := range result.Errors() {
			se.Issues = append(se.Issues, desc.String())
		}
		return Event{}, se
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return Event{}, fmt.Errorf("encode audit event: %w", err)
	}
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	if e.Actor == "" {
		e.Actor = ActorOther
	}
	return e, nil
}
