package awsenv

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSTSClient is a mock implementation of STSAPI
type MockSTSClient struct {
	mock.Mock
}

func (m *MockSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sts.GetCallerIdentityOutput), args.Error(1)
}

func TestEnv_AccountID(t *testing.T) {
	ctx := context.Background()

	t.Run("fetched once and memoized", func(t *testing.T) {
		mockSTS := new(MockSTSClient)
		mockSTS.On("GetCallerIdentity", ctx, mock.Anything, mock.Anything).
			Return(&sts.GetCallerIdentityOutput{Account: aws.String("123456789012")}, nil).
			Once()

		env := NewWithSTS("us-east-1", mockSTS)

		for range 3 {
			id, err := env.AccountID(ctx)
			require.NoError(t, err)
			assert.Equal(t, "123456789012", id)
		}
		mockSTS.AssertExpectations(t)
	})

	t.Run("concurrent callers share one fetch", func(t *testing.T) {
		mockSTS := new(MockSTSClient)
		mockSTS.On("GetCallerIdentity", ctx, mock.Anything, mock.Anything).
			Return(&sts.GetCallerIdentityOutput{Account: aws.String("123456789012")}, nil).
			Once()

		env := NewWithSTS("us-east-1", mockSTS)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := env.AccountID(ctx)
				assert.NoError(t, err)
				assert.Equal(t, "123456789012", id)
			}()
		}
		wg.Wait()
		mockSTS.AssertExpectations(t)
	})

	t.Run("failure is memoized too", func(t *testing.T) {
		mockSTS := new(MockSTSClient)
		mockSTS.On("GetCallerIdentity", ctx, mock.Anything, mock.Anything).
			Return(nil, errors.New("access denied")).
			Once()

		env := NewWithSTS("us-east-1", mockSTS)

		_, err := env.AccountID(ctx)
		require.Error(t, err)
		_, err = env.AccountID(ctx)
		require.Error(t, err)
		mockSTS.AssertExpectations(t)
	})
}

func TestEnv_HomeRegion(t *testing.T) {
	env := New("eu-west-1")
	assert.Equal(t, "eu-west-1", env.HomeRegion())
}
