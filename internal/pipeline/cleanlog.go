package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AppendCleanLog appends the human-readable cleaning summary to the audit
// log at path. The log is append-only: every run adds one timestamped block
// so operators can compare runs. It is written only after processing
// succeeds; fatal input errors abort before any log write.
func AppendCleanLog(path string, stats Stats) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open cleaning log: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "=== run %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Original: %d\n", stats.Original)
	fmt.Fprintf(&b, "Cleaned: %d\n", stats.Cleaned)
	fmt.Fprintf(&b, "Removed: %d\n", stats.Removed)
	fmt.Fprintf(&b, "Speed filter removed: %d\n", stats.SpeedRemoved)

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("write cleaning log: %w", err)
	}
	return nil
}
