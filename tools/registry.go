package tools

// Registry returns the built-in tool catalog in the order it is offered
// to the model.
func Registry() []ToolDefinition {
	return []ToolDefinition{ReadFileDefinition, ListFilesDefinition, EditFileDefinition}
}
