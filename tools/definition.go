package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToolDefinition binds a tool name and JSON Schema to its handler.
// Handlers receive the raw JSON arguments and return a string result;
// errors are surfaced to the model as recoverable tool failures.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Function    func(input json.RawMessage) (string, error)
}

// GenerateSchema derives a JSON Schema document for T's fields. Schemas
// are inlined (no $ref) and closed to additional properties so the model
// cannot invent arguments.
func GenerateSchema[T any]() json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := json.Marshal(schema)
	if err != nil {
		// Reflection over a plain struct cannot fail to marshal.
		panic(err)
	}
	return b
}
