package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbuilder/domain/events"
)

type fakeEventBridge struct {
	calls  []*eventbridge.PutEventsInput
	err    error
	failed int32
}

func (f *fakeEventBridge) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	out := &eventbridge.PutEventsOutput{FailedEntryCount: f.failed}
	for i := range in.Entries {
		entry := types.PutEventsResultEntry{EventId: aws.String(fmt.Sprintf("evt-%d", i))}
		if int32(i) < f.failed {
			entry = types.PutEventsResultEntry{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("boom")}
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

func TestPublisher_PublishMapsEntry(t *testing.T) {
	fake := &fakeEventBridge{}
	p := NewPublisher(fake, "bus", nil)
	ts := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), events.NewPromptCreated("p1", "u1", "Greeting", []string{"go"}, ts)))

	require.Len(t, fake.calls, 1)
	require.Len(t, fake.calls[0].Entries, 1)
	entry := fake.calls[0].Entries[0]
	assert.Equal(t, "bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, Source, aws.ToString(entry.Source))
	assert.Equal(t, events.TypePromptCreated, aws.ToString(entry.DetailType))
	assert.True(t, ts.Equal(aws.ToTime(entry.Time)))

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "p1", detail["prompt_id"])
	assert.Equal(t, "Greeting", detail["title"])
}

func TestPublisher_BatchesByTen(t *testing.T) {
	fake := &fakeEventBridge{}
	p := NewPublisher(fake, "bus", nil)

	var batch []events.DomainEvent
	for i := 0; i < 23; i++ {
		batch = append(batch, events.NewDraftDeleted(fmt.Sprintf("d%d", i), "u1", time.Now()))
	}
	require.NoError(t, p.PublishBatch(context.Background(), batch))

	require.Len(t, fake.calls, 3)
	assert.Len(t, fake.calls[0].Entries, 10)
	assert.Len(t, fake.calls[1].Entries, 10)
	assert.Len(t, fake.calls[2].Entries, 3)
}

func TestPublisher_EmptyBatchIsNoop(t *testing.T) {
	fake := &fakeEventBridge{}
	require.NoError(t, NewPublisher(fake, "bus", nil).PublishBatch(context.Background(), nil))
	assert.Empty(t, fake.calls)
}

func TestPublisher_Failures(t *testing.T) {
	evt := events.NewPromptDeleted("p1", "u1", time.Now())

	t.Run("client error", func(t *testing.T) {
		p := NewPublisher(&fakeEventBridge{err: errors.New("throttled")}, "bus", nil)
		assert.ErrorContains(t, p.Publish(context.Background(), evt), "throttled")
	})

	t.Run("failed entries", func(t *testing.T) {
		p := NewPublisher(&fakeEventBridge{failed: 1}, "bus", nil)
		assert.ErrorContains(t, p.Publish(context.Background(), evt), "1 events failed")
	})
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(nil)
	assert.NoError(t, p.Publish(context.Background(), events.NewPromptDeleted("p1", "u1", time.Now())))
	assert.NoError(t, p.PublishBatch(context.Background(), []events.DomainEvent{events.NewDraftDeleted("d1", "u1", time.Now())}))
}
