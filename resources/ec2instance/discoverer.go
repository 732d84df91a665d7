// Package ec2instance discovers EC2 instances per region, producing fully
// enriched records with the instance id as short id.
package ec2instance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// EC2API defines the EC2 API surface used for instance discovery
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// Discoverer implements resources.Discoverer for EC2 instances.
type Discoverer struct {
	env *awsenv.Env

	// client can be injected for testing
	client EC2API
}

// NewDiscoverer creates an EC2 instance discoverer.
func NewDiscoverer(env *awsenv.Env) *Discoverer {
	return &Discoverer{env: env}
}

// Kind returns KindEC2Instance.
func (d *Discoverer) Kind() resources.Kind {
	return resources.KindEC2Instance
}

// Scope returns ScopeRegional.
func (d *Discoverer) Scope() resources.Scope {
	return resources.ScopeRegional
}

// Discover pages through DescribeInstances for one region. Instance ARNs
// are synthesized from the region, the caller account and the instance id,
// since DescribeInstances does not return them.
func (d *Discoverer) Discover(ctx context.Context, locality string) ([]resources.Record, error) {
	account, err := d.env.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	client := d.client
	if client == nil {
		cfg, err := d.env.Config(ctx, locality)
		if err != nil {
			return nil, err
		}
		client = ec2.NewFromConfig(cfg)
	}

	input := &ec2.DescribeInstancesInput{}
	var records []resources.Record
	for {
		out, err := client.DescribeInstances(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances in %s: %w", locality, err)
		}

		for _, reservation := range out.Reservations {
			for _, instance := range reservation.Instances {
				id := aws.ToString(instance.InstanceId)
				if id == "" {
					continue
				}
				records = append(records, resources.Record{
					ARN:      instanceARN(locality, account, id),
					ShortID:  id,
					Kind:     resources.KindEC2Instance,
					Tags:     resources.FilterReservedTags(tagsToMap(instance.Tags)),
					Locality: locality,
				})
			}
		}

		token := aws.ToString(out.NextToken)
		if token == "" {
			break
		}
		input.NextToken = aws.String(token)
	}

	slog.Debug("EC2 instance discovery completed", "region", locality, "count", len(records))
	return records, nil
}

func instanceARN(region, account, instanceID string) string {
	return fmt.Sprintf("arn:aws:ec2:%s:%s:instance/%s", region, account, instanceID)
}

func tagsToMap(tags []ec2types.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.Key != nil && tag.Value != nil {
			m[*tag.Key] = *tag.Value
		}
	}
	return m
}
