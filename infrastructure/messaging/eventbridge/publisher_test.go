package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"axon-backend/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockClient struct {
	mock.Mock
	mu      sync.Mutex
	batches [][]types.PutEventsRequestEntry
}

func (m *mockClient) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	m.mu.Lock()
	m.batches = append(m.batches, in.Entries)
	m.mu.Unlock()
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

func votes(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewVoteCast("w1", "a", fmt.Sprintf("u%d", i), 3, 3, i+2, time.Unix(0, 0))
	}
	return out
}

func TestPublisher_SingleEvent(t *testing.T) {
	client := new(mockClient)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{}, nil)
	p := NewPublisher(client, "bus", zap.NewNop())

	evt := events.NewWheelCreated("w1", "u1", "Remote work", time.Unix(10, 0))
	require.NoError(t, p.Publish(context.Background(), evt))

	require.Len(t, client.batches, 1)
	entry := client.batches[0][0]
	assert.Equal(t, "bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, Source, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeWheelCreated, aws.ToString(entry.DetailType))
	assert.Equal(t, []string{"wheel/w1"}, entry.Resources)

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "Remote work", detail["title"])
}

func TestPublisher_SplitsIntoBatchesOfTen(t *testing.T) {
	client := new(mockClient)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{}, nil)
	p := NewPublisher(client, "bus", zap.NewNop())

	require.NoError(t, p.PublishBatch(context.Background(), votes(23)))

	sizes := map[int]int{}
	total := 0
	for _, b := range client.batches {
		sizes[len(b)]++
		total += len(b)
	}
	assert.Equal(t, 23, total)
	assert.Equal(t, map[int]int{10: 2, 3: 1}, sizes)
}

func TestPublisher_Empty(t *testing.T) {
	client := new(mockClient)
	p := NewPublisher(client, "bus", zap.NewNop())
	require.NoError(t, p.PublishBatch(context.Background(), nil))
	client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
}

func TestPublisher_Failures(t *testing.T) {
	t.Run("call error", func(t *testing.T) {
		client := new(mockClient)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
		p := NewPublisher(client, "bus", zap.NewNop())

		err := p.PublishBatch(context.Background(), votes(2))
		assert.ErrorContains(t, err, "throttled")
	})

	t.Run("partial failure", func(t *testing.T) {
		client := new(mockClient)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{EventId: aws.String("1")},
				{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("oops")},
			},
		}, nil)
		p := NewPublisher(client, "bus", zap.NewNop())

		err := p.PublishBatch(context.Background(), votes(2))
		assert.EqualError(t, err, "1 events failed to publish")
	})
}
