package fsops

import (
	"os"
	"sync"

	"github.com/petasbytes/converse-agent/internal/safety"
)

var (
	rootsOnce    sync.Once
	absReadRoot  string
	absWriteRoot string
	initRootsErr error
)

func initRoots() {
	read := os.Getenv("AGT_READ_ROOT")
	write := os.Getenv("AGT_WRITE_ROOT")
	absReadRoot, absWriteRoot, initRootsErr = safety.InitSandboxRoot(read, write)
}

// getRoots lazily resolves the sandbox roots from AGT_READ_ROOT and
// AGT_WRITE_ROOT and caches the result for the life of the process.
func getRoots() (string, string, error) {
	rootsOnce.Do(initRoots)
	return absReadRoot, absWriteRoot, initRootsErr
}
