package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/petasbytes/converse-agent/internal/fsops"
)

type EditFileInput struct {
	Path   string `json:"path" jsonschema_description:"Target relative file path"`
	OldStr string `json:"old_str" jsonschema_description:"Exact text to replace; must be present once when editing an existing file."`
	NewStr string `json:"new_str" jsonschema_description:"New text to write or replace old_str with"`
}

var EditFileDefinition = ToolDefinition{
	Name: "edit_file",
	Description: `Create or modify a text file addressed by a relative path within the workspace.

When old_str is empty and the file doesn’t exist, a new file is created.

When editing an existing file, all occurrences of old_str are replaced with new_str; old_str and new_str must be different.
`,
	InputSchema: EditFileInputSchema,
	Function:    EditFile,
}

var EditFileInputSchema = GenerateSchema[EditFileInput]()

// EditFile creates a file when old_str is empty and the target is absent,
// and otherwise replaces every occurrence of old_str in the existing file.
func EditFile(input json.RawMessage) (string, error) {
	var in EditFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	if in.Path == "" || in.OldStr == in.NewStr {
		return "", fmt.Errorf("invalid edit parameters")
	}

	existing, readErr := fsops.ReadFile(in.Path)
	if readErr != nil {
		if in.OldStr == "" {
			// Absent file plus empty old_str is the creation form.
			if err := fsops.WriteFile(in.Path, in.NewStr); err != nil {
				return "", err
			}
			return fmt.Sprintf("Successfully created file %s", in.Path), nil
		}
		return "", readErr
	}

	// An existing file needs a concrete old_str; an empty one would be an
	// ambiguous overwrite request.
	if in.OldStr == "" {
		return "", fmt.Errorf("old_str must be provided when editing an existing file")
	}

	updated := strings.ReplaceAll(existing, in.OldStr, in.NewStr)
	if updated == existing {
		return "", fmt.Errorf("old_str not found in file")
	}
	if err := fsops.WriteFile(in.Path, updated); err != nil {
		return "", err
	}
	return "OK", nil
}
