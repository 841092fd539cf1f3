package writer

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alisaviation/metricslog/internal/helpers"
	"github.com/alisaviation/metricslog/internal/models"
)

var ErrFileOpen = errors.New("cannot open metrics log")

// FormatLine renders one log line for a snapshot, names in ascending
// ordinal order, without the trailing newline. entries is not modified.
func FormatLine(ts time.Time, entries []models.Entry) string {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b models.Entry) int {
		return strings.Compare(a.Name, b.Name)
	})

	var line strings.Builder
	line.WriteString(helpers.FormatTimestamp(ts))
	for _, e := range sorted {
		line.WriteString(` "`)
		line.WriteString(e.Name)
		line.WriteString(`" `)
		line.WriteString(e.Value.String())
	}
	return line.String()
}

func appendLine(path, line string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrFileOpen, path, err)
	}

	if _, err := file.WriteString(line + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("write metrics log: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync metrics log: %w", err)
	}
	return file.Close()
}
