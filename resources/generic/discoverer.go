// Package generic discovers resources through the Resource Groups Tagging
// API bulk listing. Records are minimally enriched: identity and existing
// tags only, with the kind inferred from the ARN's structure.
package generic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// ResourceGroupsTaggingAPI defines the Resource Groups Tagging API interface
type ResourceGroupsTaggingAPI interface {
	GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

// Discoverer implements resources.Discoverer over GetResources.
type Discoverer struct {
	env        *awsenv.Env
	tagFilters map[string]string

	// client can be injected for testing
	client ResourceGroupsTaggingAPI
}

// NewDiscoverer creates a bulk discoverer. tagFilters restricts the listing
// to resources carrying the given tag values; empty means everything.
func NewDiscoverer(env *awsenv.Env, tagFilters map[string]string) *Discoverer {
	return &Discoverer{env: env, tagFilters: tagFilters}
}

// Kind returns KindUnknown: the bulk listing spans kinds and classifies each
// record from its ARN.
func (d *Discoverer) Kind() resources.Kind {
	return resources.KindUnknown
}

// Scope returns ScopeRegional.
func (d *Discoverer) Scope() resources.Scope {
	return resources.ScopeRegional
}

// Discover pages through GetResources for one region until the pagination
// token is exhausted.
func (d *Discoverer) Discover(ctx context.Context, locality string) ([]resources.Record, error) {
	client := d.client
	if client == nil {
		cfg, err := d.env.Config(ctx, locality)
		if err != nil {
			return nil, err
		}
		client = resourcegroupstaggingapi.NewFromConfig(cfg)
	}

	input := &resourcegroupstaggingapi.GetResourcesInput{
		TagFilters: buildTagFilters(d.tagFilters),
	}

	var records []resources.Record
	for {
		out, err := client.GetResources(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list resources in %s: %w", locality, err)
		}

		for _, mapping := range out.ResourceTagMappingList {
			arn := aws.ToString(mapping.ResourceARN)
			if arn == "" {
				continue
			}
			records = append(records, resources.Record{
				ARN:      arn,
				Kind:     resources.KindFromARN(arn),
				Tags:     resources.FilterReservedTags(tagsToMap(mapping.Tags)),
				Locality: locality,
			})
		}

		token := aws.ToString(out.PaginationToken)
		if token == "" {
			break
		}
		input.PaginationToken = aws.String(token)
	}

	slog.Debug("Bulk listing completed", "region", locality, "count", len(records))
	return records, nil
}

// buildTagFilters converts a map of tags to AWS TagFilter array
func buildTagFilters(tags map[string]string) []taggingtypes.TagFilter {
	var tagFilters []taggingtypes.TagFilter
	for key, value := range tags {
		tagFilters = append(tagFilters, taggingtypes.TagFilter{
			Key:    aws.String(key),
			Values: []string{value},
		})
	}
	return tagFilters
}

func tagsToMap(tags []taggingtypes.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.Key != nil && tag.Value != nil {
			m[*tag.Key] = *tag.Value
		}
	}
	return m
}
