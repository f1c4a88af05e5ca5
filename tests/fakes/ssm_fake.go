package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// FakeSSMClient is an in-memory Parameter Store.
//
// It implements the PutParameter, GetParameter, DeleteParameter and
// DescribeParameters calls used by the paramstore backend, returning the
// same typed errors the real service does. Safe for concurrent use.
type FakeSSMClient struct {
	mu sync.Mutex

	// Parameters maps parameter names to their data
	Parameters map[string]*ParameterData
	// Errors maps parameter names to errors to return
	Errors map[string]error
	// PutInputs records every PutParameter request in order
	PutInputs []*ssm.PutParameterInput
	// Calls counts requests per operation name
	Calls map[string]int

	// DescribeParametersFunc allows custom behavior for DescribeParameters
	DescribeParametersFunc func(ctx context.Context, params *ssm.DescribeParametersInput) (*ssm.DescribeParametersOutput, error)
}

// ParameterData holds the data for a fake SSM parameter
type ParameterData struct {
	Name             *string
	Type             ssmtypes.ParameterType
	Value            *string
	Description      *string
	KeyID            *string
	Version          int64
	LastModifiedDate *time.Time
	ARN              *string
	Tier             ssmtypes.ParameterTier
}

// NewFakeSSMClient creates a new fake SSM client
func NewFakeSSMClient() *FakeSSMClient {
	return &FakeSSMClient{
		Parameters: make(map[string]*ParameterData),
		Errors:     make(map[string]error),
		Calls:      make(map[string]int),
	}
}

// AddSecureStringParameter adds a SecureString parameter to the fake
func (f *FakeSSMClient) AddSecureStringParameter(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	f.Parameters[name] = &ParameterData{
		Name:             aws.String(name),
		Type:             ssmtypes.ParameterTypeSecureString,
		Value:            aws.String(value),
		Version:          1,
		LastModifiedDate: &now,
		ARN:              aws.String(parameterARN(name)),
		Tier:             ssmtypes.ParameterTierStandard,
	}
}

// AddError configures the fake to return an error for a specific parameter
func (f *FakeSSMClient) AddError(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[name] = err
}

// Parameter returns a copy of the stored parameter and whether it exists
func (f *FakeSSMClient) Parameter(name string) (ParameterData, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.Parameters[name]
	if !ok {
		return ParameterData{}, false
	}
	return *data, true
}

// Names returns the stored parameter names in sorted order
func (f *FakeSSMClient) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.Parameters))
	for name := range f.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallCount returns how many times op was called
func (f *FakeSSMClient) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

// LastPutInput returns the most recent PutParameter request, or nil
func (f *FakeSSMClient) LastPutInput() *ssm.PutParameterInput {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.PutInputs) == 0 {
		return nil
	}
	return f.PutInputs[len(f.PutInputs)-1]
}

// PutParameter fakes the PutParameter operation
func (f *FakeSSMClient) PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls["PutParameter"]++
	f.PutInputs = append(f.PutInputs, params)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := aws.ToString(params.Name)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}

	existing, exists := f.Parameters[name]
	if exists && !aws.ToBool(params.Overwrite) {
		return nil, &ssmtypes.ParameterAlreadyExists{
			Message: aws.String(fmt.Sprintf("The parameter already exists: %s", name)),
		}
	}

	version := int64(1)
	if exists {
		version = existing.Version + 1
	}

	now := time.Now()
	f.Parameters[name] = &ParameterData{
		Name:             aws.String(name),
		Type:             params.Type,
		Value:            aws.String(aws.ToString(params.Value)),
		Description:      params.Description,
		KeyID:            params.KeyId,
		Version:          version,
		LastModifiedDate: &now,
		ARN:              aws.String(parameterARN(name)),
		Tier:             ssmtypes.ParameterTierStandard,
	}

	return &ssm.PutParameterOutput{
		Version: version,
		Tier:    ssmtypes.ParameterTierStandard,
	}, nil
}

// GetParameter fakes the GetParameter operation
func (f *FakeSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls["GetParameter"]++

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := aws.ToString(params.Name)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}

	data, exists := f.Parameters[name]
	if !exists {
		return nil, &ssmtypes.ParameterNotFound{
			Message: aws.String(fmt.Sprintf("Parameter %s not found", name)),
		}
	}

	value := data.Value
	if data.Type == ssmtypes.ParameterTypeSecureString && !aws.ToBool(params.WithDecryption) {
		value = aws.String("AQICAHh-encrypted-blob")
	}

	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:             data.Name,
			Type:             data.Type,
			Value:            value,
			Version:          data.Version,
			LastModifiedDate: data.LastModifiedDate,
			ARN:              data.ARN,
		},
	}, nil
}

// DeleteParameter fakes the DeleteParameter operation
func (f *FakeSSMClient) DeleteParameter(ctx context.Context, params *ssm.DeleteParameterInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls["DeleteParameter"]++

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := aws.ToString(params.Name)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}

	if _, exists := f.Parameters[name]; !exists {
		return nil, &ssmtypes.ParameterNotFound{
			Message: aws.String(fmt.Sprintf("Parameter %s not found", name)),
		}
	}
	delete(f.Parameters, name)

	return &ssm.DeleteParameterOutput{}, nil
}

// DescribeParameters fakes the DescribeParameters operation
func (f *FakeSSMClient) DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, optFns ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error) {
	f.mu.Lock()
	f.Calls["DescribeParameters"]++
	fn := f.DescribeParametersFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var list []ssmtypes.ParameterMetadata
	for _, data := range f.Parameters {
		list = append(list, ssmtypes.ParameterMetadata{
			Name:             data.Name,
			Type:             data.Type,
			Version:          data.Version,
			LastModifiedDate: data.LastModifiedDate,
			Tier:             data.Tier,
		})
		if params.MaxResults != nil && int32(len(list)) >= *params.MaxResults {
			break
		}
	}

	return &ssm.DescribeParametersOutput{Parameters: list}, nil
}

func parameterARN(name string) string {
	if len(name) > 0 && name[0] != '/' {
		name = "/" + name
	}
	return "arn:aws:ssm:us-east-1:123456789012:parameter" + name
}
