package taggers

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// S3TagsAPI defines the S3 API surface used for tagging
type S3TagsAPI interface {
	PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
}

// S3Tagger tags buckets through PutBucketTagging, which is keyed by bucket
// name and replaces the whole tag set. The target map already carries the
// preserved existing tags, so a full replacement is safe.
type S3Tagger struct {
	env *awsenv.Env

	// client can be injected for testing
	client S3TagsAPI
}

// NewS3Tagger creates an S3 bucket tagger.
func NewS3Tagger(env *awsenv.Env) *S3Tagger {
	return &S3Tagger{env: env}
}

// Kind returns KindS3Bucket.
func (t *S3Tagger) Kind() resources.Kind {
	return resources.KindS3Bucket
}

// ApplyTags replaces the bucket's tag set with target.
func (t *S3Tagger) ApplyTags(ctx context.Context, rec resources.Record, target map[string]string) error {
	if rec.ShortID == "" {
		return fmt.Errorf("cannot tag %s: missing bucket name", rec.ARN)
	}

	client := t.client
	if client == nil {
		cfg, err := t.env.Config(ctx, t.env.HomeRegion())
		if err != nil {
			return err
		}
		client = s3.NewFromConfig(cfg)
	}

	keys := make([]string, 0, len(target))
	for k := range target {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tagSet := make([]s3types.Tag, 0, len(keys))
	for _, k := range keys {
		tagSet = append(tagSet, s3types.Tag{Key: aws.String(k), Value: aws.String(target[k])})
	}

	_, err := client.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(rec.ShortID),
		Tagging: &s3types.Tagging{TagSet: tagSet},
	})
	if err != nil {
		return fmt.Errorf("failed to tag bucket %s: %w", rec.ShortID, err)
	}
	return nil
}
