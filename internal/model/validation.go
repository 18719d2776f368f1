package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nvinuesa/paramcsv/internal/security"
)

// Validation errors.
var (
	ErrMissingName  = errors.New("parameter name is required")
	ErrMissingType  = errors.New("parameter type is required")
	ErrMissingValue = errors.New("parameter value is required")
)

// Validate checks that the record can be submitted as a write request.
// It should be called after the import policy has been applied.
func (r *Record) Validate() error {
	if err := r.validate(); err != nil {
		return &ErrInvalidRecord{Name: r.Name(), Err: err}
	}
	return nil
}

func (r *Record) validate() error {
	name := r.Name()
	if name == "" {
		return ErrMissingName
	}
	if err := security.ValidateParameterName(name); err != nil {
		return err
	}

	typ := r.Value(FieldType)
	if typ == "" {
		return ErrMissingType
	}
	if _, err := ParseParameterType(typ); err != nil {
		return err
	}

	// Without a tier the account default applies, which may be Advanced,
	// so only the largest ceiling is enforced.
	var tier Tier
	if v := strings.TrimSpace(r.Value(FieldTier)); v != "" {
		parsed, err := ParseTier(v)
		if err != nil {
			return err
		}
		tier = parsed
	}

	value := r.Value(FieldValue)
	if value == "" {
		return ErrMissingValue
	}
	if tier == "" {
		if err := security.ValidateStringLength(value, TierAdvanced.MaxValueLength(), "value"); err != nil {
			return err
		}
	} else if err := security.ValidateStringLength(value, tier.MaxValueLength(), "value"); err != nil {
		return fmt.Errorf("%w for tier %s", err, tier)
	}

	if err := security.ValidateStringLength(r.Value(FieldDescription), security.MaxDescriptionLength, "description"); err != nil {
		return err
	}
	return security.ValidateStringLength(r.Value(FieldAllowedPattern), security.MaxAllowedPatternLength, "allowed pattern")
}
