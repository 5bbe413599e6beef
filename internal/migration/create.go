package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout formats versions of newly created migrations.
const TimestampLayout = "20060102150405"

var validName = regexp.MustCompile(`^[a-z0-9]+(?:_[a-z0-9]+)*$`) //nolint:gochecknoglobals // compiled once

// CreateResult names the files written by Create.
type CreateResult struct {
	Version  string
	UpPath   string
	DownPath string
}

// NormalizeName lowercases name and turns runs of spaces and dashes into
// single underscores.
func NormalizeName(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})

	return strings.Join(fields, "_")
}

// Create writes an empty up/down pair versioned by now into dir. Existing
// files are never overwritten.
func Create(dir, name string, now time.Time) (CreateResult, error) {
	name = NormalizeName(name)
	if !validName.MatchString(name) {
		return CreateResult{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CreateResult{}, fmt.Errorf("creating migrations directory %s: %w", dir, err)
	}

	version := now.UTC().Format(TimestampLayout)
	base := filepath.Join(dir, version+"_"+name)
	res := CreateResult{
		Version:  version,
		UpPath:   base + ".up.sql",
		DownPath: base + ".down.sql",
	}

	if err := writeNew(res.UpPath); err != nil {
		return CreateResult{}, err
	}

	if err := writeNew(res.DownPath); err != nil {
		_ = os.Remove(res.UpPath)
		return CreateResult{}, err
	}

	return res, nil
}

func writeNew(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		}

		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	return nil
}
