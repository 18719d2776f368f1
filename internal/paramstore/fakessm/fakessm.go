// Package fakessm provides an in-memory SSM Parameter Store client for tests.
package fakessm

import (
	"context"
	"encoding/base64"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmTypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
)

// Parameter seeds a parameter into the fake store.
type Parameter struct {
	Name           string
	Type           string
	Value          string
	KeyID          string
	Description    string
	AllowedPattern string
	Tier           string
	DataType       string
	Policies       []string
	Labels         []string
}

type version struct {
	history ssmTypes.ParameterHistory
}

type entry struct {
	versions []*version
	policies []string
}

func (e *entry) current() *version {
	return e.versions[len(e.versions)-1]
}

// Client is a fake implementation of the SSM operations used by paramstore.
// It is safe for concurrent use.
type Client struct {
	mu     sync.Mutex
	params map[string]*entry

	// PageSize bounds the number of results per DescribeParameters and
	// GetParameterHistory page.
	PageSize int
	// Now stamps LastModifiedDate on writes.
	Now func() time.Time
	// User stamps LastModifiedUser on writes.
	User string

	// PutErrors forces PutParameter to fail for the named parameters.
	PutErrors map[string]error
	// DescribeErr forces DescribeParameters to fail.
	DescribeErr error
	// GetErr forces GetParameter to fail.
	GetErr error

	// PutInputs records every PutParameter request, including failed ones.
	PutInputs []*ssm.PutParameterInput
	// DescribeCalls counts DescribeParameters pages served.
	DescribeCalls int
	// GetInputs records every GetParameter request.
	GetInputs []*ssm.GetParameterInput
}

// New creates an empty fake client.
func New() *Client {
	return &Client{
		params:   make(map[string]*entry),
		PageSize: 10,
		Now:      func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
		User:     "arn:aws:iam::123456789012:user/fake",
	}
}

// Seed stores parameters as version 1, bypassing request validation.
func (c *Client) Seed(params ...Parameter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range params {
		typ := p.Type
		if typ == "" {
			typ = string(ssmTypes.ParameterTypeString)
		}
		tier := p.Tier
		if tier == "" {
			tier = string(ssmTypes.ParameterTierStandard)
		}
		h := ssmTypes.ParameterHistory{
			Name:             aws.String(p.Name),
			Type:             ssmTypes.ParameterType(typ),
			Value:            aws.String(p.Value),
			Tier:             ssmTypes.ParameterTier(tier),
			Version:          1,
			LastModifiedDate: aws.Time(c.Now()),
			LastModifiedUser: aws.String(c.User),
			Labels:           slices.Clone(p.Labels),
		}
		if p.KeyID != "" {
			h.KeyId = aws.String(p.KeyID)
		} else if typ == string(ssmTypes.ParameterTypeSecureString) {
			h.KeyId = aws.String("alias/aws/ssm")
		}
		if p.Description != "" {
			h.Description = aws.String(p.Description)
		}
		if p.AllowedPattern != "" {
			h.AllowedPattern = aws.String(p.AllowedPattern)
		}
		if p.DataType != "" {
			h.DataType = aws.String(p.DataType)
		} else {
			h.DataType = aws.String("text")
		}
		c.params[p.Name] = &entry{
			versions: []*version{{history: h}},
			policies: slices.Clone(p.Policies),
		}
	}
}

// Value returns the stored plaintext value of a parameter.
func (c *Client) Value(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.params[name]
	if !ok {
		return "", false
	}
	return aws.ToString(e.current().history.Value), true
}

// History returns every stored version of a parameter, oldest first.
func (c *Client) History(name string) []ssmTypes.ParameterHistory {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.params[name]
	if !ok {
		return nil
	}
	out := make([]ssmTypes.ParameterHistory, 0, len(e.versions))
	for _, v := range e.versions {
		out = append(out, v.history)
	}
	return out
}

// Names returns the names of all stored parameters, sorted.
func (c *Client) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedNames()
}

func (c *Client) sortedNames() []string {
	names := make([]string, 0, len(c.params))
	for name := range c.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DescribeParameters lists parameter metadata, supporting Name/Equals and
// Path/OneLevel|Recursive filters.
func (c *Client) DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, optFns ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.DescribeCalls++
	if c.DescribeErr != nil {
		return nil, c.DescribeErr
	}

	var matched []string
	for _, name := range c.sortedNames() {
		if matchesFilters(name, params.ParameterFilters) {
			matched = append(matched, name)
		}
	}

	start, end, next, err := c.page(len(matched), params.NextToken)
	if err != nil {
		return nil, err
	}

	out := &ssm.DescribeParametersOutput{NextToken: next}
	for _, name := range matched[start:end] {
		out.Parameters = append(out.Parameters, c.metadata(name))
	}
	return out, nil
}

func (c *Client) metadata(name string) ssmTypes.ParameterMetadata {
	e := c.params[name]
	h := e.current().history
	meta := ssmTypes.ParameterMetadata{
		Name:             h.Name,
		ARN:              aws.String("arn:aws:ssm:us-east-1:123456789012:parameter/" + strings.TrimPrefix(name, "/")),
		Type:             h.Type,
		KeyId:            h.KeyId,
		LastModifiedDate: h.LastModifiedDate,
		LastModifiedUser: h.LastModifiedUser,
		Description:      h.Description,
		AllowedPattern:   h.AllowedPattern,
		Tier:             h.Tier,
		Version:          h.Version,
		DataType:         h.DataType,
		Policies:         []ssmTypes.ParameterInlinePolicy{},
	}
	for _, p := range e.policies {
		meta.Policies = append(meta.Policies, ssmTypes.ParameterInlinePolicy{
			PolicyText:   aws.String(p),
			PolicyStatus: aws.String("Pending"),
		})
	}
	return meta
}

func matchesFilters(name string, filters []ssmTypes.ParameterStringFilter) bool {
	for _, f := range filters {
		key := aws.ToString(f.Key)
		option := aws.ToString(f.Option)
		ok := false
		for _, v := range f.Values {
			switch key {
			case "Name":
				ok = ok || (option == "" || option == "Equals") && name == v
			case "Path":
				ok = ok || matchesPath(name, v, option == "Recursive")
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func matchesPath(name, path string, recursive bool) bool {
	prefix := strings.TrimSuffix(path, "/") + "/"
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	rest := strings.TrimPrefix(name, prefix)
	return recursive || !strings.Contains(rest, "/")
}

func (c *Client) page(total int, token *string) (start, end int, next *string, err error) {
	if token != nil {
		start, err = strconv.Atoi(*token)
		if err != nil || start > total {
			return 0, 0, nil, apiError("InvalidNextToken", "The specified token is not valid.")
		}
	}
	size := c.PageSize
	if size <= 0 {
		size = 10
	}
	end = min(start+size, total)
	if end < total {
		next = aws.String(strconv.Itoa(end))
	}
	return start, end, next, nil
}

// GetParameter returns the current version of a parameter. SecureString
// values are returned encoded unless WithDecryption is set.
func (c *Client) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.GetInputs = append(c.GetInputs, params)
	if c.GetErr != nil {
		return nil, c.GetErr
	}

	e, ok := c.params[aws.ToString(params.Name)]
	if !ok {
		return nil, &ssmTypes.ParameterNotFound{}
	}

	h := e.current().history
	value := aws.ToString(h.Value)
	if h.Type == ssmTypes.ParameterTypeSecureString && !aws.ToBool(params.WithDecryption) {
		value = base64.StdEncoding.EncodeToString([]byte("kms:" + value))
	}

	return &ssm.GetParameterOutput{
		Parameter: &ssmTypes.Parameter{
			Name:             h.Name,
			Type:             h.Type,
			Value:            aws.String(value),
			Version:          h.Version,
			LastModifiedDate: h.LastModifiedDate,
			DataType:         h.DataType,
		},
	}, nil
}

// GetParameterHistory returns every version of a parameter, oldest first.
func (c *Client) GetParameterHistory(ctx context.Context, params *ssm.GetParameterHistoryInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterHistoryOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.params[aws.ToString(params.Name)]
	if !ok {
		return nil, &ssmTypes.ParameterNotFound{}
	}

	start, end, next, err := c.page(len(e.versions), params.NextToken)
	if err != nil {
		return nil, err
	}

	out := &ssm.GetParameterHistoryOutput{NextToken: next}
	for _, v := range e.versions[start:end] {
		h := v.history
		h.Labels = slices.Clone(h.Labels)
		out.Parameters = append(out.Parameters, h)
	}
	return out, nil
}

// PutParameter creates or overwrites a parameter. Like the real service, it
// rejects empty policy lists and non-overwriting writes to existing names.
func (c *Client) PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.PutInputs = append(c.PutInputs, params)

	name := aws.ToString(params.Name)
	if err, ok := c.PutErrors[name]; ok {
		return nil, err
	}
	if name == "" {
		return nil, apiError("ValidationException", "Parameter name must not be empty.")
	}
	if aws.ToString(params.Value) == "" {
		return nil, apiError("ValidationException", "Parameter value must not be empty.")
	}
	if params.Policies != nil && strings.TrimSpace(strings.Trim(*params.Policies, "[] ")) == "" {
		return nil, &ssmTypes.InvalidPolicyTypeException{Message: aws.String("Policies must not be empty.")}
	}
	if params.KeyId != nil && params.Type != ssmTypes.ParameterTypeSecureString {
		return nil, apiError("ValidationException", "KeyId is only valid for SecureString parameters.")
	}

	e, exists := c.params[name]
	if exists && !aws.ToBool(params.Overwrite) {
		return nil, &ssmTypes.ParameterAlreadyExists{
			Message: aws.String("The parameter already exists. To overwrite this value, set the overwrite option in the request to true."),
		}
	}

	typ := params.Type
	if typ == "" {
		if !exists {
			return nil, apiError("ValidationException", "Parameter type must be specified for a new parameter.")
		}
		typ = e.current().history.Type
	}
	tier := params.Tier
	if tier == "" || tier == ssmTypes.ParameterTierIntelligentTiering {
		tier = ssmTypes.ParameterTierStandard
	}

	h := ssmTypes.ParameterHistory{
		Name:             aws.String(name),
		Type:             typ,
		Value:            params.Value,
		KeyId:            params.KeyId,
		Description:      params.Description,
		AllowedPattern:   params.AllowedPattern,
		Tier:             tier,
		DataType:         params.DataType,
		LastModifiedDate: aws.Time(c.Now()),
		LastModifiedUser: aws.String(c.User),
		Version:          1,
	}
	if h.KeyId == nil && typ == ssmTypes.ParameterTypeSecureString {
		h.KeyId = aws.String("alias/aws/ssm")
	}
	if h.DataType == nil {
		h.DataType = aws.String("text")
	}

	var policies []string
	if params.Policies != nil {
		policies = []string{strings.TrimSuffix(strings.TrimPrefix(*params.Policies, "["), "]")}
	}

	if !exists {
		e = &entry{}
		c.params[name] = e
	} else {
		h.Version = e.current().history.Version + 1
	}
	e.versions = append(e.versions, &version{history: h})
	e.policies = policies

	return &ssm.PutParameterOutput{Version: h.Version, Tier: tier}, nil
}

// LabelParameterVersion attaches labels to a version, moving them off any
// other version of the same parameter.
func (c *Client) LabelParameterVersion(ctx context.Context, params *ssm.LabelParameterVersionInput, optFns ...func(*ssm.Options)) (*ssm.LabelParameterVersionOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.params[aws.ToString(params.Name)]
	if !ok {
		return nil, &ssmTypes.ParameterNotFound{}
	}

	target := e.current()
	if params.ParameterVersion != nil {
		target = nil
		for _, v := range e.versions {
			if v.history.Version == *params.ParameterVersion {
				target = v
			}
		}
		if target == nil {
			return nil, &ssmTypes.ParameterVersionNotFound{
				Message: aws.String(fmt.Sprintf("version %d not found", *params.ParameterVersion)),
			}
		}
	}

	out := &ssm.LabelParameterVersionOutput{ParameterVersion: target.history.Version}
	for _, label := range params.Labels {
		if !validLabel(label) {
			out.InvalidLabels = append(out.InvalidLabels, label)
			continue
		}
		for _, v := range e.versions {
			v.history.Labels = slices.DeleteFunc(v.history.Labels, func(l string) bool { return l == label })
		}
		target.history.Labels = append(target.history.Labels, label)
	}
	return out, nil
}

func validLabel(label string) bool {
	if label == "" || len(label) > 100 {
		return false
	}
	lower := strings.ToLower(label)
	if strings.HasPrefix(lower, "aws") || strings.HasPrefix(lower, "ssm") {
		return false
	}
	return label[0] < '0' || label[0] > '9'
}

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message, Fault: smithy.FaultClient}
}
