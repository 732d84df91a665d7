package taggers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// EC2TagsAPI defines the EC2 API surface used for tagging
type EC2TagsAPI interface {
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
}

// EC2Tagger tags instances through CreateTags, which is keyed by the
// instance id rather than the ARN.
type EC2Tagger struct {
	env *awsenv.Env

	// client can be injected for testing
	client EC2TagsAPI
}

// NewEC2Tagger creates an EC2 instance tagger.
func NewEC2Tagger(env *awsenv.Env) *EC2Tagger {
	return &EC2Tagger{env: env}
}

// Kind returns KindEC2Instance.
func (t *EC2Tagger) Kind() resources.Kind {
	return resources.KindEC2Instance
}

// ApplyTags sets target on the instance identified by the record's short id.
func (t *EC2Tagger) ApplyTags(ctx context.Context, rec resources.Record, target map[string]string) error {
	if rec.ShortID == "" {
		return fmt.Errorf("cannot tag %s: missing instance id", rec.ARN)
	}

	client := t.client
	if client == nil {
		cfg, err := t.env.Config(ctx, rec.Locality)
		if err != nil {
			return err
		}
		client = ec2.NewFromConfig(cfg)
	}

	tags := make([]ec2types.Tag, 0, len(target))
	for k, v := range target {
		tags = append(tags, ec2types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}

	_, err := client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{rec.ShortID},
		Tags:      tags,
	})
	if err != nil {
		return fmt.Errorf("failed to tag instance %s: %w", rec.ShortID, err)
	}
	return nil
}
