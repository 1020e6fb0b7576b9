package migrate

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

var requiredAnnotations = []string{"-- +goose Up", "-- +goose Down"}

func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir))
}

// ValidateFS checks every .sql file at the root of fsys for a well formed
// name, a unique version and both goose annotations. All problems are
// reported together.
func ValidateFS(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	var errs error
	owner := make(map[string]string, len(names))
	for _, name := range names {
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: name must look like YYYYMMDDHHMMSS_slug.sql", name))
			continue
		}
		if prev, dup := owner[m[1]]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s already used by %s", name, m[1], prev))
			continue
		}
		owner[m[1]] = name
		errs = multierr.Append(errs, checkAnnotations(fsys, name))
	}
	return errs
}

func checkAnnotations(fsys fs.FS, name string) error {
	body, err := fs.ReadFile(fsys, path.Clean(name))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	found := map[string]bool{}
	lines := bufio.NewScanner(bytes.NewReader(body))
	for lines.Scan() {
		found[strings.TrimSpace(lines.Text())] = true
	}
	var errs error
	for _, want := range requiredAnnotations {
		if !found[want] {
			errs = multierr.Append(errs, fmt.Errorf("%s: missing %q", name, want))
		}
	}
	return errs
}
