package celery

import (
	"io"
	"os"

	"github.com/celeryq/gocelery/internal/log"
)

// package-level logger, mirroring the teacher's root logger.go.
var logger = log.NewLogger(os.Stderr)

// SetLogOutput redirects the package logger's output, primarily useful
// in tests that want to silence or capture log lines.
func SetLogOutput(w io.Writer) {
	logger = log.NewLogger(w)
}
