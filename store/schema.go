package store

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaVersion identifies the serialized record format. Bump it whenever a
// Record field changes meaning or type; the SQLite store writes the version
// and schema alongside the data so collaborating tools can check what they
// are reading.
const SchemaVersion = 1

// RecordSchema returns the JSON schema of the persisted record format.
func RecordSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,  // Avoid using $ref, which can make schema validation more complex
		AllowAdditionalProperties: false, // Strictly match schema properties
	}
	return reflector.Reflect(&Record{})
}

// RecordSchemaJSON returns the record schema rendered as a JSON document.
func RecordSchemaJSON() (string, error) {
	data, err := json.Marshal(RecordSchema())
	if err != nil {
		return "", fmt.Errorf("marshaling record schema: %w", err)
	}
	return string(data), nil
}
