package taggers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	elasticachetypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// ElastiCacheTagsAPI defines the ElastiCache API surface used for tagging
type ElastiCacheTagsAPI interface {
	AddTagsToResource(ctx context.Context, params *elasticache.AddTagsToResourceInput, optFns ...func(*elasticache.Options)) (*elasticache.AddTagsToResourceOutput, error)
}

// ElastiCacheTagger tags replication groups through AddTagsToResource,
// which is keyed by the full ARN. Keys and values are lower-cased to the
// kind's native casing convention.
type ElastiCacheTagger struct {
	env *awsenv.Env

	// client can be injected for testing
	client ElastiCacheTagsAPI
}

// NewElastiCacheTagger creates an ElastiCache tagger.
func NewElastiCacheTagger(env *awsenv.Env) *ElastiCacheTagger {
	return &ElastiCacheTagger{env: env}
}

// Kind returns KindElastiCache.
func (t *ElastiCacheTagger) Kind() resources.Kind {
	return resources.KindElastiCache
}

// ApplyTags adds the lower-cased target set to the resource named by ARN.
func (t *ElastiCacheTagger) ApplyTags(ctx context.Context, rec resources.Record, target map[string]string) error {
	client := t.client
	if client == nil {
		cfg, err := t.env.Config(ctx, rec.Locality)
		if err != nil {
			return err
		}
		client = elasticache.NewFromConfig(cfg)
	}

	tags := make([]elasticachetypes.Tag, 0, len(target))
	for k, v := range target {
		tags = append(tags, elasticachetypes.Tag{
			Key:   aws.String(strings.ToLower(k)),
			Value: aws.String(strings.ToLower(v)),
		})
	}

	_, err := client.AddTagsToResource(ctx, &elasticache.AddTagsToResourceInput{
		ResourceName: aws.String(rec.ARN),
		Tags:         tags,
	})
	if err != nil {
		return fmt.Errorf("failed to tag %s: %w", rec.ARN, err)
	}
	return nil
}
