package generic

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// MockTaggingClient is a mock implementation of ResourceGroupsTaggingAPI
type MockTaggingClient struct {
	mock.Mock
}

func (m *MockTaggingClient) GetResources(ctx context.Context, params *resourcegroupstaggingapi.GetResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resourcegroupstaggingapi.GetResourcesOutput), args.Error(1)
}

func TestDiscoverer_Discover(t *testing.T) {
	ctx := context.Background()
	env := awsenv.New("us-east-1")

	t.Run("classifies kinds and strips reserved tags", func(t *testing.T) {
		client := new(MockTaggingClient)
		client.On("GetResources", ctx, mock.Anything, mock.Anything).Return(&resourcegroupstaggingapi.GetResourcesOutput{
			ResourceTagMappingList: []taggingtypes.ResourceTagMapping{
				{
					ResourceARN: aws.String("arn:aws:ec2:us-east-1:123456789012:instance/i-abc"),
					Tags: []taggingtypes.Tag{
						{Key: aws.String("Name"), Value: aws.String("web")},
						{Key: aws.String("aws:cloudformation:stack-name"), Value: aws.String("s")},
					},
				},
				{
					ResourceARN: aws.String("arn:aws:sqs:us-east-1:123456789012:my-queue"),
					Tags:        []taggingtypes.Tag{{Key: aws.String("Team"), Value: aws.String("core")}},
				},
			},
		}, nil)

		d := NewDiscoverer(env, nil)
		d.client = client

		records, err := d.Discover(ctx, "us-east-1")
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, resources.KindEC2Instance, records[0].Kind)
		assert.Equal(t, map[string]string{"Name": "web"}, records[0].Tags)
		assert.Equal(t, "us-east-1", records[0].Locality)
		assert.Empty(t, records[0].ShortID)

		assert.Equal(t, resources.KindUnknown, records[1].Kind)
	})

	t.Run("follows pagination tokens", func(t *testing.T) {
		client := new(MockTaggingClient)
		first := &resourcegroupstaggingapi.GetResourcesOutput{
			ResourceTagMappingList: []taggingtypes.ResourceTagMapping{
				{ResourceARN: aws.String("arn:aws:s3:::bucket-one")},
			},
			PaginationToken: aws.String("next"),
		}
		second := &resourcegroupstaggingapi.GetResourcesOutput{
			ResourceTagMappingList: []taggingtypes.ResourceTagMapping{
				{ResourceARN: aws.String("arn:aws:s3:::bucket-two")},
			},
		}
		client.On("GetResources", ctx, mock.MatchedBy(func(in *resourcegroupstaggingapi.GetResourcesInput) bool {
			return in.PaginationToken == nil
		}), mock.Anything).Return(first, nil).Once()
		client.On("GetResources", ctx, mock.MatchedBy(func(in *resourcegroupstaggingapi.GetResourcesInput) bool {
			return aws.ToString(in.PaginationToken) == "next"
		}), mock.Anything).Return(second, nil).Once()

		d := NewDiscoverer(env, nil)
		d.client = client

		records, err := d.Discover(ctx, "us-east-1")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "arn:aws:s3:::bucket-one", records[0].ARN)
		assert.Equal(t, "arn:aws:s3:::bucket-two", records[1].ARN)
		client.AssertExpectations(t)
	})

	t.Run("tag filters are forwarded", func(t *testing.T) {
		client := new(MockTaggingClient)
		client.On("GetResources", ctx, mock.MatchedBy(func(in *resourcegroupstaggingapi.GetResourcesInput) bool {
			return len(in.TagFilters) == 1 && aws.ToString(in.TagFilters[0].Key) == "env"
		}), mock.Anything).Return(&resourcegroupstaggingapi.GetResourcesOutput{}, nil)

		d := NewDiscoverer(env, map[string]string{"env": "production"})
		d.client = client

		_, err := d.Discover(ctx, "us-east-1")
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("API failure propagates", func(t *testing.T) {
		client := new(MockTaggingClient)
		client.On("GetResources", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		d := NewDiscoverer(env, nil)
		d.client = client

		_, err := d.Discover(ctx, "us-east-1")
		assert.Error(t, err)
	})
}

func TestDiscoverer_Metadata(t *testing.T) {
	d := NewDiscoverer(awsenv.New("us-east-1"), nil)
	assert.Equal(t, resources.KindUnknown, d.Kind())
	assert.Equal(t, resources.ScopeRegional, d.Scope())
}
