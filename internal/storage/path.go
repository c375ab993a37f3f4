package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildArchivePath returns the date-partitioned object key for a result
// snapshot archived at the given time, e.g.
// results/2026/08/25/1756123456789-a1b2c3d4.parquet.
func BuildArchivePath(prefix string, archivedAt time.Time, id, extension string) (string, error) {
	if err := validatePathPrefix(prefix); err != nil {
		return "", err
	}
	if err := validatePathComponent(id, "archive id"); err != nil {
		return "", err
	}
	if err := validatePathComponent(extension, "archive extension"); err != nil {
		return "", err
	}

	ts := archivedAt.UTC()
	return path.Join(
		prefix,
		fmt.Sprintf("%04d", ts.Year()),
		fmt.Sprintf("%02d", ts.Month()),
		fmt.Sprintf("%02d", ts.Day()),
		id+"."+extension,
	), nil
}

// validatePathPrefix accepts slash-separated prefixes such as
// "archive/results"; every segment must be a safe path component.
func validatePathPrefix(prefix string) error {
	for _, segment := range strings.Split(prefix, "/") {
		if err := validatePathComponent(segment, "archive prefix"); err != nil {
			return err
		}
	}
	return nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
