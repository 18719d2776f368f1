// Package model defines the parameter record shared by the exporter and the importer.
package model

import (
	"fmt"
	"strings"
)

// ParameterType represents the type of a parameter store entry.
type ParameterType string

const (
	// TypeString is a plain string value.
	TypeString ParameterType = "String"
	// TypeStringList is a comma-separated list of strings.
	TypeStringList ParameterType = "StringList"
	// TypeSecureString is a value encrypted with a KMS key.
	TypeSecureString ParameterType = "SecureString"
)

// String returns the string representation of the ParameterType.
func (t ParameterType) String() string {
	return string(t)
}

// ParseParameterType parses a string into a ParameterType.
// Matching is case-sensitive, as it is for the remote API.
func ParseParameterType(s string) (ParameterType, error) {
	switch ParameterType(s) {
	case TypeString, TypeStringList, TypeSecureString:
		return ParameterType(s), nil
	default:
		return "", fmt.Errorf("unknown parameter type: %q", s)
	}
}

// Tier represents the storage tier of a parameter.
type Tier string

const (
	// TierStandard is the default tier (values up to 4 KB).
	TierStandard Tier = "Standard"
	// TierAdvanced allows values up to 8 KB and parameter policies.
	TierAdvanced Tier = "Advanced"
	// TierIntelligentTiering lets the store pick the tier per request.
	TierIntelligentTiering Tier = "Intelligent-Tiering"
)

// String returns the string representation of the Tier.
func (t Tier) String() string {
	return string(t)
}

// MaxValueLength returns the maximum value size in bytes for the tier.
func (t Tier) MaxValueLength() int {
	if t == TierStandard {
		return 4096
	}
	return 8192
}

// ParseTier parses a string into a Tier. Both "Intelligent-Tiering" and
// "IntelligentTiering" are accepted.
func ParseTier(s string) (Tier, error) {
	switch strings.ReplaceAll(s, "-", "") {
	case "Standard":
		return TierStandard, nil
	case "Advanced":
		return TierAdvanced, nil
	case "IntelligentTiering":
		return TierIntelligentTiering, nil
	default:
		return "", fmt.Errorf("unknown parameter tier: %q", s)
	}
}
