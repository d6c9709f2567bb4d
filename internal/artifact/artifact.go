// Package artifact renders the files derived from a reconciled profile: the
// standardized CV as PDF and the timeline as PNG. Paths returned to callers
// are relative to the artifact root and use forward slashes.
package artifact

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	id "vitae/pkg/domain"
)

const (
	pdfDir      = "pdfs"
	timelineDir = "timelines"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// SafeName turns a display name into a file name fragment. An empty name
// becomes "unknown_<person>".
func SafeName(name string, personID id.PersonID) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("unknown_%d", personID)
	}
	return nonWord.ReplaceAllString(name, "_")
}

// PDFPath is the relative path of a person's CV.
func PDFPath(fullName string, personID id.PersonID) string {
	return path.Join(pdfDir, fmt.Sprintf("cv_%s_%d.pdf", SafeName(fullName, personID), personID))
}

// TimelinePath is the relative path of a document's timeline rendered at t.
func TimelinePath(docID id.DocumentID, t time.Time) string {
	return path.Join(timelineDir, fmt.Sprintf("timeline_doc_%d_%s.png", docID, t.UTC().Format("20060102150405")))
}

type config struct {
	logger *slog.Logger
	clock  func() time.Time
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func newConfig(opts []Option) config {
	c := config{logger: slog.Default(), clock: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// writeFile writes rel under root through a temporary file so readers never
// see a partial artifact.
func writeFile(root, rel string, render func(w io.Writer) error) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := render(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("move artifact: %w", err)
	}
	return nil
}
