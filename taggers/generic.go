package taggers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// BulkTagsAPI defines the Resource Groups Tagging API surface used for
// tagging
type BulkTagsAPI interface {
	TagResources(ctx context.Context, params *resourcegroupstaggingapi.TagResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.TagResourcesOutput, error)
}

// GenericTagger is the fallback for kinds without a dedicated tagger. It
// uses the bulk TagResources operation, keyed by ARN.
type GenericTagger struct {
	env *awsenv.Env

	// client can be injected for testing
	client BulkTagsAPI
}

// NewGenericTagger creates the bulk fallback tagger.
func NewGenericTagger(env *awsenv.Env) *GenericTagger {
	return &GenericTagger{env: env}
}

// Kind returns KindUnknown.
func (t *GenericTagger) Kind() resources.Kind {
	return resources.KindUnknown
}

// ApplyTags tags the resource identified by its ARN. A per-resource failure
// reported in the response body counts as an error even when the call
// itself succeeds.
func (t *GenericTagger) ApplyTags(ctx context.Context, rec resources.Record, target map[string]string) error {
	client := t.client
	if client == nil {
		region := rec.Locality
		if region == resources.LocalityGlobal {
			region = t.env.HomeRegion()
		}
		cfg, err := t.env.Config(ctx, region)
		if err != nil {
			return err
		}
		client = resourcegroupstaggingapi.NewFromConfig(cfg)
	}

	out, err := client.TagResources(ctx, &resourcegroupstaggingapi.TagResourcesInput{
		ResourceARNList: []string{rec.ARN},
		Tags:            target,
	})
	if err != nil {
		return fmt.Errorf("failed to tag %s: %w", rec.ARN, err)
	}
	if failure, failed := out.FailedResourcesMap[rec.ARN]; failed {
		return fmt.Errorf("failed to tag %s: %s", rec.ARN, stringOrDefault(failure.ErrorMessage, "unknown failure"))
	}
	return nil
}

func stringOrDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
