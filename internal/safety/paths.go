// Package safety confines tool file access to the sandbox roots and
// enforces the read and write denylists.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ToolError is the machine-readable error body fed back to the model as a
// tool result.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error renders the body as one compact JSON line so tool_result payloads
// stay small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// InitSandboxRoot resolves the absolute read and write roots. An empty read
// root falls back to the current directory; an empty write root falls back
// to the read root.
func InitSandboxRoot(readRoot, writeRoot string) (absRead string, absWrite string, err error) {
	if readRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("getwd: %w", err)
		}
		readRoot = cwd
	}
	if writeRoot == "" {
		writeRoot = readRoot
	}

	if readRoot, err = filepath.Abs(readRoot); err != nil {
		return "", "", fmt.Errorf("abs(readRoot): %w", err)
	}
	if writeRoot, err = filepath.Abs(writeRoot); err != nil {
		return "", "", fmt.Errorf("abs(writeRoot): %w", err)
	}

	// Resolve symlinked roots up front so later boundary checks compare
	// like with like. A root that does not exist yet stays as-is.
	if r, err := filepath.EvalSymlinks(readRoot); err == nil {
		readRoot = r
	}
	if w, err := filepath.EvalSymlinks(writeRoot); err == nil {
		writeRoot = w
	}

	return readRoot, writeRoot, nil
}

// resolveInsideRoot turns relPath into an absolute path under absRoot and
// returns it together with the slash-separated relative form used by the
// denylist checks. Absolute inputs, parent traversal, and symlink escapes
// all fail with ERR_PATH_OUTSIDE_SANDBOX.
func resolveInsideRoot(absRoot, relPath string) (candidate string, slashRel string, err error) {
	if filepath.IsAbs(relPath) {
		return "", "", ToolError{Code: "ERR_PATH_OUTSIDE_SANDBOX", Message: "absolute paths are not allowed"}
	}

	cleaned := filepath.Clean(relPath)
	if cleaned == "" {
		cleaned = "."
	}
	candidate = filepath.Join(absRoot, cleaned)

	// Symlink resolution is best effort: resolve the full candidate when it
	// exists, otherwise resolve its parent and rejoin the leaf. The second
	// form still catches an escape through a symlinked directory even when
	// the target file has not been created yet.
	if resolved, rerr := filepath.EvalSymlinks(candidate); rerr == nil {
		candidate = resolved
	} else if resolvedParent, perr := filepath.EvalSymlinks(filepath.Dir(candidate)); perr == nil {
		candidate = filepath.Join(resolvedParent, filepath.Base(candidate))
	}

	// filepath.Rel survives partial prefix collisions (/tmp/ab vs /tmp/abc)
	// where a naive strings.HasPrefix would not.
	rel, rerr := filepath.Rel(absRoot, candidate)
	if rerr != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", ToolError{Code: "ERR_PATH_OUTSIDE_SANDBOX", Message: "requested path resolves outside the sandbox root"}
	}

	return candidate, filepath.ToSlash(rel), nil
}

// underDir reports whether slashRel is dir itself or anything beneath it.
func underDir(slashRel, dir string) bool {
	return slashRel == dir || strings.HasPrefix(slashRel, dir+"/")
}

// ValidateRelPath resolves relPath against absRoot for a read and returns
// the absolute in-sandbox path. Reads under .git/ and .agent/ are denied.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolveInsideRoot(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if underDir(rel, ".git") || underDir(rel, ".agent") {
		return "", ToolError{Code: "ERR_DENIED_READ", Message: "reads under .git/ or .agent/ are not allowed"}
	}
	return candidate, nil
}
