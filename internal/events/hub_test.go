package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loopworks/therapysync/internal/records/domain"
)

func receive(t *testing.T, ch <-chan ChangeEvent) ChangeEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("expected an event")
		return ChangeEvent{}
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()

	sub, tail, err := hub.Subscribe(domain.KindBolus)
	require.NoError(t, err)
	defer sub.Close()
	require.Empty(t, tail)

	hub.Publish(ChangeEvent{Kind: domain.KindBolus, Outcome: OutcomeInserted, RecordID: 7, Timestamp: 1000})

	event := receive(t, sub.Events())
	require.Equal(t, domain.KindBolus, event.Kind)
	require.Equal(t, OutcomeInserted, event.Outcome)
	require.EqualValues(t, 7, event.RecordID)
}

func TestStreamsAreIsolatedByKind(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(domain.KindCarbs)
	require.NoError(t, err)
	defer sub.Close()

	hub.Publish(ChangeEvent{Kind: domain.KindBolus, Outcome: OutcomeInserted, RecordID: 1})

	select {
	case event := <-sub.Events():
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeReplaysTail(t *testing.T) {
	hub := NewHub()

	for i := 1; i <= 3; i++ {
		hub.Publish(ChangeEvent{Kind: domain.KindBolus, Outcome: OutcomeInserted, RecordID: int64(i)})
	}

	sub, tail, err := hub.Subscribe(domain.KindBolus)
	require.NoError(t, err)
	defer sub.Close()

	require.Len(t, tail, 3)
	require.EqualValues(t, 1, tail[0].RecordID)
	require.EqualValues(t, 3, tail[2].RecordID)
}

func TestTailIsBounded(t *testing.T) {
	hub := NewHub()

	for i := 0; i < DefaultBufferSize+10; i++ {
		hub.Publish(ChangeEvent{Kind: domain.KindBolus, Outcome: OutcomeInserted, RecordID: int64(i)})
	}

	sub, tail, err := hub.Subscribe(domain.KindBolus)
	require.NoError(t, err)
	defer sub.Close()

	require.Len(t, tail, DefaultBufferSize)
	require.EqualValues(t, 10, tail[0].RecordID)
}

func TestSubscribeUnknownKind(t *testing.T) {
	hub := NewHub()

	_, _, err := hub.Subscribe(domain.RecordKind("not_a_kind"))
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(domain.KindBolus)
	require.NoError(t, err)
	defer sub.Close()

	// Without a reader the channel fills; publishing past capacity must
	// not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < DefaultSubscriberBuffer*2; i++ {
			hub.Publish(ChangeEvent{Kind: domain.KindBolus, RecordID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	require.Len(t, sub.Events(), DefaultSubscriberBuffer)
}

func TestCloseStopsDelivery(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(domain.KindBolus)
	require.NoError(t, err)
	sub.Close()
	sub.Close()

	hub.Publish(ChangeEvent{Kind: domain.KindBolus, RecordID: 1})
	require.Empty(t, sub.Events())
}

func TestUserEntryStreamExists(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(domain.KindUserEntry)
	require.NoError(t, err)
	defer sub.Close()

	hub.Publish(ChangeEvent{Kind: domain.KindUserEntry, Outcome: OutcomeInserted})
	event := receive(t, sub.Events())
	require.Equal(t, domain.KindUserEntry, event.Kind)
}
