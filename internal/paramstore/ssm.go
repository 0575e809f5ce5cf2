package paramstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ssmAPI is the part of *ssm.Client used here.
type ssmAPI interface {
	ssm.GetParametersByPathAPIClient
	ssm.DescribeParametersAPIClient
	PutParameter(ctx context.Context, in *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DeleteParameter(ctx context.Context, in *ssm.DeleteParameterInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error)
}

// SSM is a Store backed by AWS Systems Manager Parameter Store.
type SSM struct {
	api ssmAPI
}

var _ Store = (*SSM)(nil)

// NewSSM loads the shared AWS configuration for profile and region (either
// may be empty to use the SDK defaults) and returns an SSM store.
func NewSSM(ctx context.Context, profile, region string) (*SSM, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SSM{api: ssm.NewFromConfig(cfg)}, nil
}

func (s *SSM) ListByPath(ctx context.Context, path string) ([]Parameter, error) {
	p := ssm.NewGetParametersByPathPaginator(s.api, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	var out []Parameter
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("get parameters by path %s: %w", path, err)
		}
		for _, sp := range page.Parameters {
			out = append(out, Parameter{
				Name:  aws.ToString(sp.Name),
				Type:  string(sp.Type),
				Value: aws.ToString(sp.Value),
			})
		}
	}
	return out, nil
}

func (s *SSM) Describe(ctx context.Context, name string) (string, error) {
	out, err := s.api.DescribeParameters(ctx, &ssm.DescribeParametersInput{
		ParameterFilters: []types.ParameterStringFilter{{
			Key:    aws.String("Name"),
			Option: aws.String("Equals"),
			Values: []string{name},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("describe parameter %s: %w", name, err)
	}
	if len(out.Parameters) == 0 {
		return "", fmt.Errorf("describe parameter %s: %w", name, ErrNotFound)
	}
	return aws.ToString(out.Parameters[0].Description), nil
}

func (s *SSM) Put(ctx context.Context, p Parameter, overwrite bool) error {
	typ := p.Type
	if typ == "" {
		typ = TypeString
	}
	in := &ssm.PutParameterInput{
		Name:      aws.String(p.Name),
		Value:     aws.String(p.Value),
		Type:      types.ParameterType(typ),
		Overwrite: aws.Bool(overwrite),
	}
	if p.Description != "" {
		in.Description = aws.String(p.Description)
	}

	if _, err := s.api.PutParameter(ctx, in); err != nil {
		var exists *types.ParameterAlreadyExists
		if errors.As(err, &exists) {
			return fmt.Errorf("put parameter %s: %w", p.Name, ErrAlreadyExists)
		}
		return fmt.Errorf("put parameter %s: %w", p.Name, err)
	}
	return nil
}

func (s *SSM) Delete(ctx context.Context, name string) error {
	if _, err := s.api.DeleteParameter(ctx, &ssm.DeleteParameterInput{Name: aws.String(name)}); err != nil {
		var missing *types.ParameterNotFound
		if errors.As(err, &missing) {
			return fmt.Errorf("delete parameter %s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("delete parameter %s: %w", name, err)
	}
	return nil
}
