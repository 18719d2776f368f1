// Package security provides input validation and safe file handling for
// parameter data, which routinely includes decrypted secrets.
package security

import (
	"fmt"
	"os"
	"strings"
)

// Parameter store limits.
const (
	MaxNameLength           = 2048
	MaxHierarchyDepth       = 15
	MaxDescriptionLength    = 1024
	MaxAllowedPatternLength = 1024
)

// ValidateStringLength validates that a string is within allowed length.
func ValidateStringLength(s string, maxLen int, fieldName string) error {
	if len(s) > maxLen {
		return fmt.Errorf("%s exceeds maximum length of %d bytes", fieldName, maxLen)
	}
	return nil
}

// ValidateParameterName ensures a name is acceptable to the parameter store.
func ValidateParameterName(name string) error {
	if name == "" {
		return fmt.Errorf("parameter name cannot be empty")
	}

	if err := ValidateStringLength(name, MaxNameLength, "parameter name"); err != nil {
		return err
	}

	for _, r := range name {
		if !isNameRune(r) {
			return fmt.Errorf("parameter name contains invalid character %q", r)
		}
	}

	if hasReservedPrefix(name) {
		return fmt.Errorf("parameter name cannot begin with \"aws\" or \"ssm\"")
	}

	if strings.HasPrefix(name, "/") {
		if depth := strings.Count(name, "/"); depth > MaxHierarchyDepth {
			return fmt.Errorf("parameter name has %d hierarchy levels (max %d)", depth, MaxHierarchyDepth)
		}
		if strings.Contains(name, "//") || strings.HasSuffix(name, "/") {
			return fmt.Errorf("parameter name contains an empty path segment")
		}
	}

	return nil
}

// hasReservedPrefix matches a flat name starting with aws/ssm, or a
// hierarchical name whose first segment is aws/ssm.
func hasReservedPrefix(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "/") {
		return strings.HasPrefix(lower, "aws") || strings.HasPrefix(lower, "ssm")
	}
	first, _, _ := strings.Cut(lower[1:], "/")
	return first == "aws" || first == "ssm"
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '-' || r == '/':
		return true
	default:
		return false
	}
}

// ValidateFilePath ensures a path can be used as a CSV file: it must be
// non-empty and must not name a directory.
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains null byte")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	return nil
}
