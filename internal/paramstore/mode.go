package paramstore

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	ssmTypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/nvinuesa/paramcsv/internal/model"
)

// Mode selects how a source spec is matched against parameter names.
type Mode int

const (
	// ModeExact matches a single parameter by its full name.
	ModeExact Mode = iota
	// ModeOneLevel matches the direct children of a path.
	ModeOneLevel
	// ModeRecursive matches everything below a path.
	ModeRecursive
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeOneLevel:
		return "one-level"
	case ModeRecursive:
		return "recursive"
	default:
		return "unknown"
	}
}

// ParseMode derives the mode from the one-level and recursive switches.
// Requesting both is a usage error.
func ParseMode(oneLevel, recursive bool) (Mode, error) {
	switch {
	case oneLevel && recursive:
		return ModeExact, &model.ErrUsage{Details: "--one-level and --recursive are mutually exclusive"}
	case oneLevel:
		return ModeOneLevel, nil
	case recursive:
		return ModeRecursive, nil
	default:
		return ModeExact, nil
	}
}

// filter builds the DescribeParameters filter for a spec.
func (m Mode) filter(spec string) ssmTypes.ParameterStringFilter {
	switch m {
	case ModeOneLevel:
		return ssmTypes.ParameterStringFilter{Key: aws.String("Path"), Option: aws.String("OneLevel"), Values: []string{spec}}
	case ModeRecursive:
		return ssmTypes.ParameterStringFilter{Key: aws.String("Path"), Option: aws.String("Recursive"), Values: []string{spec}}
	default:
		return ssmTypes.ParameterStringFilter{Key: aws.String("Name"), Option: aws.String("Equals"), Values: []string{spec}}
	}
}
