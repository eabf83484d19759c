package allocbench

import (
	"fmt"
	"strings"
	"time"
)

// ArchiveName is the file the raw results are compressed into.
const ArchiveName = "results_backup.tgz"

// Config controls one plotting run.
type Config struct {
	// Allocator names, as used for CSV column headers and JSON keys.
	Baseline  string
	Candidate string

	// Format is the image format of the charts, picked by file extension.
	Format string
	// Chart sizes in inches.
	UnitWidth     float64
	UnitHeight    float64
	ProgramWidth  float64
	ProgramHeight float64

	HTML    bool
	Archive bool

	// DSN enables the MySQL history store when set.
	DSN string
	// RunID identifies this run in the history store and the upload path.
	RunID string

	GCSBucket string
	GCSPrefix string

	Timeout time.Duration
	Verbose bool
}

// DefaultConfig returns the configuration matching the harness output.
func DefaultConfig() Config {
	return Config{
		Baseline:      Libc,
		Candidate:     Challoc,
		Format:        "svg",
		UnitWidth:     6.4,
		UnitHeight:    4.8,
		ProgramWidth:  8,
		ProgramHeight: 8,
		HTML:          true,
		Archive:       true,
		GCSPrefix:     "allocbench",
		Timeout:       time.Minute,
	}
}

var imageFormats = map[string]bool{
	"svg": true, "png": true, "pdf": true, "eps": true,
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Baseline == "" || c.Candidate == "" {
		return fmt.Errorf("allocator names must not be empty")
	}
	if c.Baseline == c.Candidate {
		return fmt.Errorf("baseline and candidate are both %q", c.Baseline)
	}
	c.Format = strings.ToLower(strings.TrimPrefix(c.Format, "."))
	if !imageFormats[c.Format] {
		return fmt.Errorf("unsupported image format %q", c.Format)
	}
	if c.UnitWidth <= 0 || c.UnitHeight <= 0 || c.ProgramWidth <= 0 || c.ProgramHeight <= 0 {
		return fmt.Errorf("chart sizes must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// RunIDAt formats t as a run identifier.
func RunIDAt(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
