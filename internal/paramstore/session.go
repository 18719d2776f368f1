package paramstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Session selects the credentials and region of a store connection. Empty
// fields fall back to the SDK's default resolution chain.
type Session struct {
	Profile string
	Region  string
}

// LoadAWSConfig resolves the AWS configuration for a session. Requests are
// attempted once: failures are reported, never retried.
func LoadAWSConfig(ctx context.Context, s Session) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 1)
		}),
	}
	if s.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.Profile))
	}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.Region == "" {
		return aws.Config{}, errors.New("no AWS region configured: use a region flag, AWS_REGION, or a profile with a region")
	}
	return cfg, nil
}

// Connect creates a Store for the session.
func Connect(ctx context.Context, s Session) (*Store, aws.Config, error) {
	cfg, err := LoadAWSConfig(ctx, s)
	if err != nil {
		return nil, aws.Config{}, err
	}
	return New(ssm.NewFromConfig(cfg)), cfg, nil
}

// IdentityClient is the subset of the STS API used by CallerIdentity.
type IdentityClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// CallerIdentity returns the ARN the session's credentials resolve to.
func CallerIdentity(ctx context.Context, client IdentityClient) (string, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", &ErrRemote{Op: "GetCallerIdentity", Err: err}
	}
	if out.Arn == nil {
		return "", errors.New("caller identity ARN is nil")
	}
	return *out.Arn, nil
}
