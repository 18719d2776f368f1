package config

import (
	"fmt"
	"strconv"
	"strings"
)

// BoolValue is a boolean flag that always takes an explicit argument, as in
// "--with-decryption false". Unlike a pflag bool it has no implied value, so
// "-d False" is never read as "-d" followed by a positional argument.
type BoolValue bool

// NewBoolValue returns a BoolValue holding def.
func NewBoolValue(def bool) *BoolValue {
	b := BoolValue(def)
	return &b
}

// Set implements pflag.Value.
func (b *BoolValue) Set(s string) error {
	v, err := ParseBool(s)
	if err != nil {
		return err
	}
	*b = BoolValue(v)
	return nil
}

// String implements pflag.Value. It always renders true or false.
func (b *BoolValue) String() string {
	return strconv.FormatBool(bool(*b))
}

// Type implements pflag.Value.
func (b *BoolValue) Type() string {
	return "true|false"
}

// Bool returns the current value.
func (b *BoolValue) Bool() bool {
	return bool(*b)
}

// ParseBool accepts true/false, yes/no, on/off, and 1/0 in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q: use true or false", s)
	}
}
