// Package sourcefile reads source files as line sequences and writes them
// back out.
package sourcefile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// OutputSuffix is appended to the input path to name the annotated copy.
const OutputSuffix = ".encommented"

var newlineRe = regexp.MustCompile(`\r?\n`)

// Split breaks text into lines on LF or CRLF. A trailing newline yields a
// final empty line so that Join restores it.
func Split(text string) []string {
	return newlineRe.Split(text, -1)
}

// Join concatenates lines with LF regardless of the original line endings.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}

// Read loads path and splits it into lines.
func Read(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return Split(string(data)), nil
}

// Write joins lines and writes them to path, creating parent directories.
func Write(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Join(lines)), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// OutputPath returns the default output location for input.
func OutputPath(input string) string {
	return input + OutputSuffix
}
