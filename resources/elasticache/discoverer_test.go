package elasticache

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	elasticachetypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moepig/tagsweep/awsenv"
	"github.com/moepig/tagsweep/resources"
)

// MockElastiCacheClient is a mock implementation of ElastiCacheAPI
type MockElastiCacheClient struct {
	mock.Mock
}

func (m *MockElastiCacheClient) DescribeReplicationGroups(ctx context.Context, params *elasticache.DescribeReplicationGroupsInput, optFns ...func(*elasticache.Options)) (*elasticache.DescribeReplicationGroupsOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elasticache.DescribeReplicationGroupsOutput), args.Error(1)
}

func (m *MockElastiCacheClient) ListTagsForResource(ctx context.Context, params *elasticache.ListTagsForResourceInput, optFns ...func(*elasticache.Options)) (*elasticache.ListTagsForResourceOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elasticache.ListTagsForResourceOutput), args.Error(1)
}

const groupARN = "arn:aws:elasticache:us-east-1:123456789012:replicationgroup:my-cluster"

func TestDiscoverer_Discover(t *testing.T) {
	ctx := context.Background()
	env := awsenv.New("us-east-1")

	t.Run("returns enriched records with tags", func(t *testing.T) {
		client := new(MockElastiCacheClient)
		client.On("DescribeReplicationGroups", ctx, mock.Anything, mock.Anything).Return(&elasticache.DescribeReplicationGroupsOutput{
			ReplicationGroups: []elasticachetypes.ReplicationGroup{
				{
					ReplicationGroupId: aws.String("my-cluster"),
					ARN:                aws.String(groupARN),
				},
			},
		}, nil)
		client.On("ListTagsForResource", ctx, mock.MatchedBy(func(in *elasticache.ListTagsForResourceInput) bool {
			return aws.ToString(in.ResourceName) == groupARN
		}), mock.Anything).Return(&elasticache.ListTagsForResourceOutput{
			TagList: []elasticachetypes.Tag{
				{Key: aws.String("env"), Value: aws.String("production")},
			},
		}, nil)

		d := NewDiscoverer(env)
		d.client = client

		records, err := d.Discover(ctx, "us-east-1")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, groupARN, records[0].ARN)
		assert.Equal(t, "my-cluster", records[0].ShortID)
		assert.Equal(t, resources.KindElastiCache, records[0].Kind)
		assert.Equal(t, map[string]string{"env": "production"}, records[0].Tags)
	})

	t.Run("follows the describe marker", func(t *testing.T) {
		client := new(MockElastiCacheClient)
		first := &elasticache.DescribeReplicationGroupsOutput{
			ReplicationGroups: []elasticachetypes.ReplicationGroup{
				{ReplicationGroupId: aws.String("a"), ARN: aws.String(groupARN + "-a")},
			},
			Marker: aws.String("m1"),
		}
		second := &elasticache.DescribeReplicationGroupsOutput{
			ReplicationGroups: []elasticachetypes.ReplicationGroup{
				{ReplicationGroupId: aws.String("b"), ARN: aws.String(groupARN + "-b")},
			},
		}
		client.On("DescribeReplicationGroups", ctx, mock.MatchedBy(func(in *elasticache.DescribeReplicationGroupsInput) bool {
			return in.Marker == nil
		}), mock.Anything).Return(first, nil).Once()
		client.On("DescribeReplicationGroups", ctx, mock.MatchedBy(func(in *elasticache.DescribeReplicationGroupsInput) bool {
			return aws.ToString(in.Marker) == "m1"
		}), mock.Anything).Return(second, nil).Once()
		client.On("ListTagsForResource", ctx, mock.Anything, mock.Anything).Return(&elasticache.ListTagsForResourceOutput{}, nil)

		d := NewDiscoverer(env)
		d.client = client

		records, err := d.Discover(ctx, "us-east-1")
		require.NoError(t, err)
		assert.Len(t, records, 2)
		client.AssertExpectations(t)
	})

	t.Run("describe failure propagates", func(t *testing.T) {
		client := new(MockElastiCacheClient)
		client.On("DescribeReplicationGroups", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		d := NewDiscoverer(env)
		d.client = client

		_, err := d.Discover(ctx, "us-east-1")
		assert.Error(t, err)
	})
}

func TestDiscoverer_Metadata(t *testing.T) {
	d := NewDiscoverer(awsenv.New("us-east-1"))
	assert.Equal(t, resources.KindElastiCache, d.Kind())
	assert.Equal(t, resources.ScopeRegional, d.Scope())
}
