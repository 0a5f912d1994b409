package safety

import "path/filepath"

// ValidateWritePath resolves relPath against absRoot for a write. The
// boundary rules match ValidateRelPath; the denylist is stricter: nothing
// under .git/ or .agent/, and no go.mod or go.sum at any depth.
func ValidateWritePath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolveInsideRoot(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, ".agent") {
		return "", ToolError{Code: "ERR_DENIED_WRITE", Message: "writes under .git/ or .agent/ are not allowed"}
	}
	switch filepath.Base(rel) {
	case "go.mod", "go.sum":
		return "", ToolError{Code: "ERR_DENIED_WRITE", Message: "writes to go.mod/go.sum are not allowed"}
	}
	return candidate, nil
}
