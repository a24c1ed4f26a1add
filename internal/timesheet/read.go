package timesheet

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Read returns the text of a timesheet. A byte order mark selects UTF-16 or
// is stripped from UTF-8; without one the input is taken as UTF-8.
func Read(r io.Reader) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", fmt.Errorf("could not decode timesheet: %w", err)
	}
	return string(data), nil
}

// ReadFile reads the timesheet at path, see Read.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not read file '%s': %w", path, err)
	}
	defer f.Close()

	text, err := Read(f)
	if err != nil {
		return "", fmt.Errorf("'%s': %w", path, err)
	}
	return text, nil
}
