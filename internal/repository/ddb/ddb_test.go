package ddb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deleteRequest(sk string) types.WriteRequest {
	return types.WriteRequest{
		DeleteRequest: &types.DeleteRequest{
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: "USER#u#PROJECT#p"},
				"SK": &types.AttributeValueMemberS{Value: sk},
			},
		},
	}
}

func TestBatchWriteWithRetry(t *testing.T) {
	ctx := context.Background()
	writes := []types.WriteRequest{deleteRequest("REL#a"), deleteRequest("REL#b")}

	t.Run("all processed first try", func(t *testing.T) {
		calls := 0
		err := batchWriteWithRetry(ctx, writes, func(ctx context.Context, pending []types.WriteRequest) ([]types.WriteRequest, error) {
			calls++
			return nil, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("unprocessed items are resubmitted", func(t *testing.T) {
		var submitted [][]types.WriteRequest
		err := batchWriteWithRetry(ctx, writes, func(ctx context.Context, pending []types.WriteRequest) ([]types.WriteRequest, error) {
			submitted = append(submitted, pending)
			if len(submitted) == 1 {
				return pending[1:], nil // second request throttled
			}
			return nil, nil
		})
		require.NoError(t, err)
		require.Len(t, submitted, 2)
		assert.Len(t, submitted[0], 2)
		assert.Len(t, submitted[1], 1)
		assert.Equal(t, writes[1], submitted[1][0])
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		calls := 0
		err := batchWriteWithRetry(ctx, writes, func(ctx context.Context, pending []types.WriteRequest) ([]types.WriteRequest, error) {
			calls++
			return pending, nil // never makes progress
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unprocessed")
		assert.Equal(t, maxBatchRetries+1, calls)
	})

	t.Run("send errors surface immediately", func(t *testing.T) {
		boom := errors.New("throughput exceeded")
		err := batchWriteWithRetry(ctx, writes, func(ctx context.Context, pending []types.WriteRequest) ([]types.WriteRequest, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("canceled context stops retrying", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()
		err := batchWriteWithRetry(canceled, writes, func(ctx context.Context, pending []types.WriteRequest) ([]types.WriteRequest, error) {
			return pending, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("no writes is a no-op", func(t *testing.T) {
		err := batchWriteWithRetry(ctx, nil, func(ctx context.Context, pending []types.WriteRequest) ([]types.WriteRequest, error) {
			t.Fatal("send must not run without writes")
			return nil, nil
		})
		assert.NoError(t, err)
	})
}
