// Package s3bucket discovers S3 buckets. The bucket namespace is not
// partitioned by region, so this discoverer runs once per process with the
// global locality.
package s3bucket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// S3API defines the S3 API surface used for bucket discovery
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
}

// Discoverer implements resources.Discoverer for S3 buckets.
type Discoverer struct {
	env *awsenv.Env

	// client can be injected for testing
	client S3API
}

// NewDiscoverer creates an S3 bucket discoverer.
func NewDiscoverer(env *awsenv.Env) *Discoverer {
	return &Discoverer{env: env}
}

// Kind returns KindS3Bucket.
func (d *Discoverer) Kind() resources.Kind {
	return resources.KindS3Bucket
}

// Scope returns ScopeGlobal.
func (d *Discoverer) Scope() resources.Scope {
	return resources.ScopeGlobal
}

// Discover pages through ListBuckets and reads each bucket's tag set. A
// bucket without a tag set contributes an empty tag map.
func (d *Discoverer) Discover(ctx context.Context, locality string) ([]resources.Record, error) {
	client := d.client
	if client == nil {
		cfg, err := d.env.Config(ctx, d.env.HomeRegion())
		if err != nil {
			return nil, err
		}
		client = s3.NewFromConfig(cfg)
	}

	input := &s3.ListBucketsInput{}
	var buckets []s3types.Bucket
	for {
		out, err := client.ListBuckets(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets: %w", err)
		}
		buckets = append(buckets, out.Buckets...)

		token := aws.ToString(out.ContinuationToken)
		if token == "" {
			break
		}
		input.ContinuationToken = aws.String(token)
	}

	records := make([]resources.Record, 0, len(buckets))
	for _, bucket := range buckets {
		name := aws.ToString(bucket.Name)
		if name == "" {
			continue
		}

		tags, err := d.bucketTags(ctx, client, name)
		if err != nil {
			return nil, err
		}

		records = append(records, resources.Record{
			ARN:      "arn:aws:s3:::" + name,
			ShortID:  name,
			Kind:     resources.KindS3Bucket,
			Tags:     resources.FilterReservedTags(tags),
			Locality: locality,
		})
	}

	slog.Debug("S3 bucket discovery completed", "count", len(records))
	return records, nil
}

func (d *Discoverer) bucketTags(ctx context.Context, client S3API, name string) (map[string]string, error) {
	out, err := client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(name)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchTagSet" {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to get tags for bucket %s: %w", name, err)
	}

	m := make(map[string]string, len(out.TagSet))
	for _, tag := range out.TagSet {
		if tag.Key != nil && tag.Value != nil {
			m[*tag.Key] = *tag.Value
		}
	}
	return m, nil
}
