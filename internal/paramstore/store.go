// Package paramstore adapts AWS Systems Manager Parameter Store to the
// record model used by the exporter and importer.
package paramstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmTypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/nvinuesa/paramcsv/internal/model"
)

// Client is the subset of the SSM API used by Store. *ssm.Client satisfies it.
type Client interface {
	ssm.DescribeParametersAPIClient
	ssm.GetParameterHistoryAPIClient
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	LabelParameterVersion(ctx context.Context, params *ssm.LabelParameterVersionInput, optFns ...func(*ssm.Options)) (*ssm.LabelParameterVersionOutput, error)
}

// Store reads and writes parameter records. It holds no per-run state other
// than its client.
type Store struct {
	client Client
}

// New creates a Store backed by client.
func New(client Client) *Store {
	return &Store{client: client}
}

// List returns the metadata of every parameter matching spec, without
// values. Records are merged by name across pages; a later duplicate
// replaces the earlier record but keeps its position.
func (s *Store) List(ctx context.Context, spec string, mode Mode) ([]*model.Record, error) {
	paginator := ssm.NewDescribeParametersPaginator(s.client, &ssm.DescribeParametersInput{
		ParameterFilters: []ssmTypes.ParameterStringFilter{mode.filter(spec)},
	})

	var records []*model.Record
	index := make(map[string]int)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &ErrRemote{Op: "DescribeParameters", Name: spec, Err: err}
		}
		for _, meta := range page.Parameters {
			rec := recordFromMetadata(meta)
			if i, ok := index[rec.Name()]; ok {
				records[i] = rec
				continue
			}
			index[rec.Name()] = len(records)
			records = append(records, rec)
		}
	}

	return records, nil
}

// Value fetches the value of a single parameter.
func (s *Store) Value(ctx context.Context, name string, decrypt bool) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(decrypt),
	})
	if err != nil {
		return "", &ErrRemote{Op: "GetParameter", Name: name, Err: err}
	}
	if out.Parameter == nil {
		return "", &ErrRemote{Op: "GetParameter", Name: name, Err: errors.New("response has no parameter")}
	}
	return aws.ToString(out.Parameter.Value), nil
}

// Labels returns the labels attached to one version of a parameter.
func (s *Store) Labels(ctx context.Context, name string, version int64) ([]string, error) {
	paginator := ssm.NewGetParameterHistoryPaginator(s.client, &ssm.GetParameterHistoryInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(false),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &ErrRemote{Op: "GetParameterHistory", Name: name, Err: err}
		}
		for _, h := range page.Parameters {
			if h.Version == version {
				return h.Labels, nil
			}
		}
	}

	return nil, nil
}

// Put writes a record. Only write-compatible fields are sent; see
// PutInput. It returns the version created by the write.
func (s *Store) Put(ctx context.Context, rec *model.Record, overwrite bool) (int64, error) {
	out, err := s.client.PutParameter(ctx, PutInput(rec, overwrite))
	if err != nil {
		var exists *ssmTypes.ParameterAlreadyExists
		if errors.As(err, &exists) {
			return 0, &ErrAlreadyExists{Name: rec.Name(), Err: err}
		}
		return 0, &ErrRemote{Op: "PutParameter", Name: rec.Name(), Err: err}
	}
	return out.Version, nil
}

// Label attaches labels to a parameter version. Labels the store refuses
// are reported as an error.
func (s *Store) Label(ctx context.Context, name string, version int64, labels []string) error {
	out, err := s.client.LabelParameterVersion(ctx, &ssm.LabelParameterVersionInput{
		Name:             aws.String(name),
		ParameterVersion: aws.Int64(version),
		Labels:           labels,
	})
	if err != nil {
		return &ErrRemote{Op: "LabelParameterVersion", Name: name, Err: err}
	}
	if len(out.InvalidLabels) > 0 {
		return &ErrRemote{
			Op:   "LabelParameterVersion",
			Name: name,
			Err:  errors.New("invalid labels: " + strings.Join(out.InvalidLabels, ", ")),
		}
	}
	return nil
}

// PutInput maps a record to a write request. Name, Type, Value, and
// Overwrite are always set; KeyId, Description, AllowedPattern, Tier,
// DataType, and Policies only when present and non-empty. Every other field
// is left out.
func PutInput(rec *model.Record, overwrite bool) *ssm.PutParameterInput {
	in := &ssm.PutParameterInput{
		Name:      aws.String(rec.Name()),
		Type:      ssmTypes.ParameterType(rec.Value(model.FieldType)),
		Value:     aws.String(rec.Value(model.FieldValue)),
		Overwrite: aws.Bool(overwrite),
	}

	in.KeyId = optional(rec, model.FieldKeyID)
	in.Description = optional(rec, model.FieldDescription)
	in.AllowedPattern = optional(rec, model.FieldAllowedPattern)
	in.DataType = optional(rec, model.FieldDataType)
	in.Policies = optional(rec, model.FieldPolicies)

	if tier := strings.TrimSpace(rec.Value(model.FieldTier)); tier != "" {
		if parsed, err := model.ParseTier(tier); err == nil {
			tier = parsed.String()
		}
		in.Tier = ssmTypes.ParameterTier(tier)
	}

	return in
}

func optional(rec *model.Record, field string) *string {
	v, ok := rec.Get(field)
	if !ok || v == "" {
		return nil
	}
	return aws.String(v)
}

// recordFromMetadata converts listing metadata to a record. Fields the
// response does not carry stay absent; an empty policy list is kept as a
// present but empty field so normalization can drop it.
func recordFromMetadata(meta ssmTypes.ParameterMetadata) *model.Record {
	rec := model.NewRecord(aws.ToString(meta.Name))

	if meta.Type != "" {
		rec.Set(model.FieldType, string(meta.Type))
	}
	setOptional(rec, model.FieldKeyID, meta.KeyId)
	if meta.LastModifiedDate != nil {
		rec.Set(model.FieldLastModifiedDate, meta.LastModifiedDate.UTC().Format(time.RFC3339))
	}
	setOptional(rec, model.FieldLastModifiedUser, meta.LastModifiedUser)
	setOptional(rec, model.FieldDescription, meta.Description)
	setOptional(rec, model.FieldAllowedPattern, meta.AllowedPattern)
	if meta.Tier != "" {
		rec.Set(model.FieldTier, string(meta.Tier))
	}
	rec.Set(model.FieldVersion, strconv.FormatInt(meta.Version, 10))
	rec.Set(model.FieldPolicies, encodePolicies(meta.Policies))
	setOptional(rec, model.FieldDataType, meta.DataType)

	return rec
}

func setOptional(rec *model.Record, field string, v *string) {
	if v != nil {
		rec.Set(field, *v)
	}
}

// encodePolicies renders inline policies as the JSON array PutParameter
// accepts. Each policy text is already a JSON object.
func encodePolicies(policies []ssmTypes.ParameterInlinePolicy) string {
	if len(policies) == 0 {
		return ""
	}
	texts := make([]string, 0, len(policies))
	for _, p := range policies {
		if t := aws.ToString(p.PolicyText); t != "" {
			texts = append(texts, t)
		}
	}
	return "[" + strings.Join(texts, ",") + "]"
}
