// Package elasticache discovers ElastiCache replication groups per region.
package elasticache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	elasticachetypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// ElastiCacheAPI defines the ElastiCache API surface used for discovery
type ElastiCacheAPI interface {
	DescribeReplicationGroups(ctx context.Context, params *elasticache.DescribeReplicationGroupsInput, optFns ...func(*elasticache.Options)) (*elasticache.DescribeReplicationGroupsOutput, error)
	ListTagsForResource(ctx context.Context, params *elasticache.ListTagsForResourceInput, optFns ...func(*elasticache.Options)) (*elasticache.ListTagsForResourceOutput, error)
}

// Discoverer implements resources.Discoverer for replication groups.
type Discoverer struct {
	env *awsenv.Env

	// client can be injected for testing
	client ElastiCacheAPI
}

// NewDiscoverer creates an ElastiCache discoverer.
func NewDiscoverer(env *awsenv.Env) *Discoverer {
	return &Discoverer{env: env}
}

// Kind returns KindElastiCache.
func (d *Discoverer) Kind() resources.Kind {
	return resources.KindElastiCache
}

// Scope returns ScopeRegional.
func (d *Discoverer) Scope() resources.Scope {
	return resources.ScopeRegional
}

// Discover pages through DescribeReplicationGroups for one region and reads
// each group's tags through ListTagsForResource.
func (d *Discoverer) Discover(ctx context.Context, locality string) ([]resources.Record, error) {
	client := d.client
	if client == nil {
		cfg, err := d.env.Config(ctx, locality)
		if err != nil {
			return nil, err
		}
		client = elasticache.NewFromConfig(cfg)
	}

	input := &elasticache.DescribeReplicationGroupsInput{}
	var groups []elasticachetypes.ReplicationGroup
	for {
		out, err := client.DescribeReplicationGroups(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to describe replication groups in %s: %w", locality, err)
		}
		groups = append(groups, out.ReplicationGroups...)

		marker := aws.ToString(out.Marker)
		if marker == "" {
			break
		}
		input.Marker = aws.String(marker)
	}

	records := make([]resources.Record, 0, len(groups))
	for _, rg := range groups {
		arn := aws.ToString(rg.ARN)
		if arn == "" {
			continue
		}

		tagsOut, err := client.ListTagsForResource(ctx, &elasticache.ListTagsForResourceInput{
			ResourceName: aws.String(arn),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list tags for %s: %w", arn, err)
		}

		records = append(records, resources.Record{
			ARN:      arn,
			ShortID:  aws.ToString(rg.ReplicationGroupId),
			Kind:     resources.KindElastiCache,
			Tags:     resources.FilterReservedTags(tagsToMap(tagsOut.TagList)),
			Locality: locality,
		})
	}

	slog.Debug("ElastiCache discovery completed", "region", locality, "count", len(records))
	return records, nil
}

func tagsToMap(tags []elasticachetypes.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.Key != nil && tag.Value != nil {
			m[*tag.Key] = *tag.Value
		}
	}
	return m
}
