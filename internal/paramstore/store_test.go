package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ssmTypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvinuesa/paramcsv/internal/model"
	"github.com/nvinuesa/paramcsv/internal/paramstore/fakessm"
)

var _ Client = (*fakessm.Client)(nil)

func seededClient() *fakessm.Client {
	c := fakessm.New()
	c.PageSize = 2
	c.Seed(
		fakessm.Parameter{Name: "/app/a", Value: "1"},
		fakessm.Parameter{Name: "/app/b", Value: "2", Description: "second"},
		fakessm.Parameter{Name: "/app/c", Type: "SecureString", Value: "secret", KeyID: "alias/app"},
		fakessm.Parameter{Name: "/app/nested/d", Type: "StringList", Value: "x,y"},
		fakessm.Parameter{Name: "/other/e", Value: "5"},
		fakessm.Parameter{Name: "flat", Value: "6", Policies: []string{`{"Type":"Expiration","Version":"1.0","Attributes":{"Timestamp":"2030-01-01T00:00:00Z"}}`}},
	)
	return c
}

func names(records []*model.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name())
	}
	return out
}

func TestStore_List(t *testing.T) {
	tests := []struct {
		name  string
		spec  string
		mode  Mode
		want  []string
		pages int
	}{
		{"Exact", "/app/b", ModeExact, []string{"/app/b"}, 1},
		{"Exact miss", "/app", ModeExact, []string{}, 1},
		{"One level", "/app", ModeOneLevel, []string{"/app/a", "/app/b", "/app/c"}, 2},
		{"One level trailing slash", "/app/", ModeOneLevel, []string{"/app/a", "/app/b", "/app/c"}, 2},
		{"Recursive", "/app", ModeRecursive, []string{"/app/a", "/app/b", "/app/c", "/app/nested/d"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := seededClient()
			records, err := New(client).List(context.Background(), tt.spec, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(records))
			assert.Equal(t, tt.pages, client.DescribeCalls)
		})
	}
}

func TestStore_List_MapsMetadata(t *testing.T) {
	records, err := New(seededClient()).List(context.Background(), "/app/c", ModeExact)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "SecureString", r.Value(model.FieldType))
	assert.Equal(t, "alias/app", r.Value(model.FieldKeyID))
	assert.Equal(t, "2024-01-02T03:04:05Z", r.Value(model.FieldLastModifiedDate))
	assert.Equal(t, "arn:aws:iam::123456789012:user/fake", r.Value(model.FieldLastModifiedUser))
	assert.Equal(t, "Standard", r.Value(model.FieldTier))
	assert.Equal(t, "1", r.Value(model.FieldVersion))
	assert.Equal(t, "text", r.Value(model.FieldDataType))
	assert.False(t, r.Has(model.FieldValue), "listing must not carry values")
	assert.False(t, r.Has(model.FieldDescription))

	policies, ok := r.Get(model.FieldPolicies)
	assert.True(t, ok, "empty policies are present but empty")
	assert.Empty(t, policies)
}

func TestStore_List_EncodesPolicies(t *testing.T) {
	records, err := New(seededClient()).List(context.Background(), "flat", ModeExact)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t,
		`[{"Type":"Expiration","Version":"1.0","Attributes":{"Timestamp":"2030-01-01T00:00:00Z"}}]`,
		records[0].Value(model.FieldPolicies))
}

func TestStore_List_Error(t *testing.T) {
	client := seededClient()
	client.DescribeErr = &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not authorized"}

	_, err := New(client).List(context.Background(), "/app", ModeRecursive)
	require.Error(t, err)
	assert.Equal(t, KindRemote, KindOf(err))

	var remote *ErrRemote
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "not authorized", remote.Message())
	assert.Equal(t, "AccessDeniedException", remote.Code())
}

func TestStore_Value(t *testing.T) {
	client := seededClient()
	s := New(client)

	v, err := s.Value(context.Background(), "/app/c", true)
	require.NoError(t, err)
	assert.Equal(t, "secret", v)
	assert.True(t, aws.ToBool(client.GetInputs[0].WithDecryption))

	v, err = s.Value(context.Background(), "/app/c", false)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", v)
	assert.False(t, aws.ToBool(client.GetInputs[1].WithDecryption))

	_, err = s.Value(context.Background(), "/missing", true)
	assert.Equal(t, KindRemote, KindOf(err))
}

func TestStore_Put(t *testing.T) {
	t.Run("Create then collide", func(t *testing.T) {
		client := fakessm.New()
		s := New(client)

		rec := model.NewRecord("/app/new")
		rec.Set(model.FieldType, "String")
		rec.Set(model.FieldValue, "v")

		version, err := s.Put(context.Background(), rec, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), version)

		_, err = s.Put(context.Background(), rec, false)
		require.Error(t, err)
		assert.Equal(t, KindAlreadyExists, KindOf(err))
		assert.True(t, IsAlreadyExists(err))

		version, err = s.Put(context.Background(), rec, true)
		require.NoError(t, err)
		assert.Equal(t, int64(2), version)
	})

	t.Run("Generic failure", func(t *testing.T) {
		client := fakessm.New()
		client.PutErrors = map[string]error{
			"/app/x": &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"},
		}

		rec := model.NewRecord("/app/x")
		rec.Set(model.FieldType, "String")
		rec.Set(model.FieldValue, "v")

		_, err := New(client).Put(context.Background(), rec, true)
		assert.Equal(t, KindRemote, KindOf(err))
		assert.Equal(t, "Rate exceeded", Message(err))
	})
}

func TestPutInput(t *testing.T) {
	rec := model.NewRecord("/app/key")
	rec.Set(model.FieldType, "SecureString")
	rec.Set(model.FieldValue, "v")
	rec.Set(model.FieldKeyID, "alias/app")
	rec.Set(model.FieldDescription, "")
	rec.Set(model.FieldTier, "IntelligentTiering")
	rec.Set(model.FieldLabels, `["prod"]`)
	rec.Set(model.FieldLastModifiedDate, "2024-01-02T03:04:05Z")
	rec.Set(model.FieldVersion, "7")
	rec.Set(model.FieldPolicies, `[{"Type":"Expiration"}]`)

	in := PutInput(rec, true)

	assert.Equal(t, "/app/key", aws.ToString(in.Name))
	assert.Equal(t, ssmTypes.ParameterTypeSecureString, in.Type)
	assert.Equal(t, "v", aws.ToString(in.Value))
	assert.True(t, aws.ToBool(in.Overwrite))
	assert.Equal(t, "alias/app", aws.ToString(in.KeyId))
	assert.Nil(t, in.Description, "empty fields are not sent")
	assert.Nil(t, in.AllowedPattern)
	assert.Nil(t, in.DataType)
	assert.Equal(t, ssmTypes.ParameterTierIntelligentTiering, in.Tier)
	assert.Equal(t, `[{"Type":"Expiration"}]`, aws.ToString(in.Policies))
	assert.Empty(t, in.Tags)

	in = PutInput(model.NewRecord("/app/bare"), false)
	assert.False(t, aws.ToBool(in.Overwrite))
	assert.Equal(t, ssmTypes.ParameterTier(""), in.Tier)
	assert.Nil(t, in.Policies)
}

func TestStore_LabelsRoundTrip(t *testing.T) {
	client := fakessm.New()
	client.PageSize = 1
	s := New(client)

	rec := model.NewRecord("/app/key")
	rec.Set(model.FieldType, "String")
	rec.Set(model.FieldValue, "v1")
	_, err := s.Put(context.Background(), rec, false)
	require.NoError(t, err)
	rec.Set(model.FieldValue, "v2")
	version, err := s.Put(context.Background(), rec, true)
	require.NoError(t, err)

	require.NoError(t, s.Label(context.Background(), "/app/key", version, []string{"prod", "current"}))

	labels, err := s.Labels(context.Background(), "/app/key", version)
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", "current"}, labels)

	labels, err = s.Labels(context.Background(), "/app/key", 1)
	require.NoError(t, err)
	assert.Empty(t, labels)

	err = s.Label(context.Background(), "/app/key", version, []string{"1bad"})
	require.Error(t, err)
	assert.Contains(t, Message(err), "1bad")
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(false, false)
	require.NoError(t, err)
	assert.Equal(t, ModeExact, m)

	m, err = ParseMode(true, false)
	require.NoError(t, err)
	assert.Equal(t, ModeOneLevel, m)

	m, err = ParseMode(false, true)
	require.NoError(t, err)
	assert.Equal(t, ModeRecursive, m)

	_, err = ParseMode(true, true)
	require.Error(t, err)
	assert.Equal(t, KindUsage, KindOf(err))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{&ErrNotFound{Spec: "/x"}, KindNotFound},
		{&ErrAlreadyExists{Name: "/x"}, KindAlreadyExists},
		{&ErrRemote{Op: "PutParameter", Err: errors.New("boom")}, KindRemote},
		{&model.ErrUsage{Details: "bad flags"}, KindUsage},
		{&model.ErrInvalidRecord{Name: "/x", Err: model.ErrMissingValue}, KindInvalidRecord},
		{errors.New("anything else"), KindRemote},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "/app/missing not found.", (&ErrNotFound{Spec: "/app/missing"}).Error())
	assert.True(t, IsNotFound(&ErrNotFound{Spec: "/app/missing"}))
	assert.Equal(t, "parameter value is required",
		Message(&model.ErrInvalidRecord{Name: "/x", Err: model.ErrMissingValue}))
	assert.Equal(t, "GetParameter /x: boom", (&ErrRemote{Op: "GetParameter", Name: "/x", Err: errors.New("boom")}).Error())
}

type fakeIdentity struct {
	arn *string
	err error
}

func (f fakeIdentity) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Arn: f.arn}, nil
}

func TestCallerIdentity(t *testing.T) {
	arn, err := CallerIdentity(context.Background(), fakeIdentity{arn: aws.String("arn:aws:iam::123456789012:user/alice")})
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:user/alice", arn)

	_, err = CallerIdentity(context.Background(), fakeIdentity{})
	assert.ErrorContains(t, err, "nil")

	_, err = CallerIdentity(context.Background(), fakeIdentity{err: errors.New("expired token")})
	assert.Equal(t, KindRemote, KindOf(err))
}
