// Package regions enumerates the scan universe of region codes.
package regions

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/moepig/tagsweep/awsenv"
)

// EC2RegionsAPI defines the EC2 API surface used for region enumeration
type EC2RegionsAPI interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// EnumerationError means the scan universe is unknown. It is fatal: without
// the region list there is no meaningful partial scan.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	if e.Err == nil {
		return "region enumeration returned no regions"
	}
	return fmt.Sprintf("region enumeration failed: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// Enumerator lists enabled regions via the home-region EC2 endpoint.
type Enumerator struct {
	env *awsenv.Env

	// client can be injected for testing
	client EC2RegionsAPI
}

// NewEnumerator creates an Enumerator backed by env's home region.
func NewEnumerator(env *awsenv.Env) *Enumerator {
	return &Enumerator{env: env}
}

// NewEnumeratorWithClient creates an Enumerator with an injected client.
func NewEnumeratorWithClient(env *awsenv.Env, client EC2RegionsAPI) *Enumerator {
	return &Enumerator{env: env, client: client}
}

// Enumerate queries the provider once and returns the region codes in sorted
// order. An API failure or an empty answer yields an *EnumerationError.
func (e *Enumerator) Enumerate(ctx context.Context) ([]string, error) {
	client := e.client
	if client == nil {
		cfg, err := e.env.Config(ctx, e.env.HomeRegion())
		if err != nil {
			return nil, &EnumerationError{Err: err}
		}
		client = ec2.NewFromConfig(cfg)
	}

	out, err := client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, &EnumerationError{Err: err}
	}

	codes := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if name := aws.ToString(r.RegionName); name != "" {
			codes = append(codes, name)
		}
	}
	if len(codes) == 0 {
		return nil, &EnumerationError{}
	}

	sort.Strings(codes)
	slog.Debug("Enumerated regions", "count", len(codes), "regions", codes)
	return codes, nil
}
