package security

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreatePrivateFile creates or truncates path with owner-only permissions.
// Exports contain decrypted values, so the file must not be world readable.
func CreatePrivateFile(path string) (*os.File, error) {
	if err := ValidateFilePath(path); err != nil {
		return nil, err
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}

	// O_CREATE does not change the mode of an existing file.
	if err := f.Chmod(0600); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}
