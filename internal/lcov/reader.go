package lcov

import (
	"fmt"
	"os"
)

// ReadFile loads the report content from disk. Read failures wrap the
// underlying error and propagate to the caller; nothing is retried.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read coverage report: %w", err)
	}
	return string(data), nil
}
