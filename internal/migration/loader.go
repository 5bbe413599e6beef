package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// filenamePattern matches migration files in two formats:
//
//	V{version}_{name}.up.sql   (e.g., V001_create_people.up.sql)
//	{timestamp}_{name}.up.sql  (e.g., 20190601000000_create_people.up.sql)
var filenamePattern = regexp.MustCompile( //nolint:gochecknoglobals // compiled once, used by the loaders
	`^(?:V(\d+)|(\d{14}))_(.+)\.(up|down)\.sql$`,
)

// LoadFromDir scans a directory for migration files and returns them sorted by version.
// Files that do not match the expected naming pattern are skipped.
func LoadFromDir(dir string) ([]Migration, error) {
	ms, err := load(os.DirFS(dir), ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	for i := range ms {
		ms[i].FilePath = filepath.Join(dir, filepath.FromSlash(ms[i].FilePath))
	}

	return ms, nil
}

// LoadFromFS is LoadFromDir for an fs.FS, typically an embedded one.
// FilePath values are relative to fsys.
func LoadFromFS(fsys fs.FS, dir string) ([]Migration, error) {
	ms, err := load(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations from %s: %w", dir, err)
	}

	return ms, nil
}

func load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	ms, err := buildMigrations(fsys, dir, scanEntries(entries))
	if err != nil {
		return nil, err
	}

	if err := Validate(ms); err != nil {
		return nil, err
	}

	return ms, nil
}

// migrationFile pairs the up and down files of one version.
type migrationFile struct {
	version  string
	name     string
	upFile   string
	downFile string
}

// scanEntries groups directory entries by version+name key.
func scanEntries(entries []fs.DirEntry) map[string]*migrationFile {
	grouped := make(map[string]*migrationFile)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := filenamePattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		version := matches[1]
		if version == "" {
			version = matches[2]
		}

		key := version + "_" + matches[3]

		mf, ok := grouped[key]
		if !ok {
			mf = &migrationFile{version: version, name: matches[3]}
			grouped[key] = mf
		}

		if matches[4] == "up" {
			mf.upFile = entry.Name()
		} else {
			mf.downFile = entry.Name()
		}
	}

	return grouped
}

func buildMigrations(fsys fs.FS, dir string, grouped map[string]*migrationFile) ([]Migration, error) {
	var migrations []Migration

	for _, mf := range grouped {
		if mf.upFile == "" {
			continue // orphan .down.sql
		}

		m, err := readMigration(fsys, dir, mf)
		if err != nil {
			return nil, err
		}

		migrations = append(migrations, m)
	}

	return Sort(migrations), nil
}

func readMigration(fsys fs.FS, dir string, mf *migrationFile) (Migration, error) {
	upPath := path.Join(dir, mf.upFile)

	upSQL, err := readTrimmed(fsys, upPath)
	if err != nil {
		return Migration{}, err
	}

	var downSQL string

	if mf.downFile != "" {
		downSQL, err = readTrimmed(fsys, path.Join(dir, mf.downFile))
		if err != nil {
			return Migration{}, err
		}
	}

	return Migration{
		Version:  mf.version,
		Name:     mf.name,
		UpSQL:    upSQL,
		DownSQL:  downSQL,
		Checksum: ComputeChecksum(upSQL),
		FilePath: upPath,
	}, nil
}

func readTrimmed(fsys fs.FS, name string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("reading migration file %s: %w", name, err)
	}

	return strings.TrimSpace(string(data)), nil
}
