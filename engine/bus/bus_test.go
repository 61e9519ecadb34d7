package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushInvokesSubscribersInOrder(t *testing.T) {
	b := New()
	ch := NewChannel("test", KindSignal)

	var got []string
	for _, name := range []string{"a", "b", "c"} {
		_, err := b.Subscribe(ch, name, func(m Message) error {
			got = append(got, m.Subscriber)
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, b.Signal(ch))
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestPushWithoutSubscribersIsNoop(t *testing.T) {
	b := New()
	assert.NoError(t, b.Push(NewChannel("lonely", KindData), 42))
	assert.Equal(t, uint64(1), b.Stats().Pushes)
}

func TestPushUsesSnapshot(t *testing.T) {
	b := New()
	ch := NewChannel("reentrant", KindSignal)

	var calls []string
	var second *Subscription
	_, err := b.Subscribe(ch, "first", func(Message) error {
		calls = append(calls, "first")
		// disposing a later subscriber skips it for this push
		second.Dispose()
		// subscribing mid-push is only visible to the next push
		_, err := b.Subscribe(ch, "late", func(Message) error {
			calls = append(calls, "late")
			return nil
		})
		return err
	})
	require.NoError(t, err)
	second, err = b.Subscribe(ch, "second", func(Message) error {
		calls = append(calls, "second")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Signal(ch))
	assert.Equal(t, []string{"first"}, calls)

	calls = nil
	require.NoError(t, b.Signal(ch))
	assert.Equal(t, []string{"first", "late"}, calls)
}

func TestSelfDisposeDuringPush(t *testing.T) {
	b := New()
	ch := NewChannel("once", KindSignal)

	count := 0
	var sub *Subscription
	sub, err := b.Subscribe(ch, "self", func(Message) error {
		count++
		sub.Dispose()
		return nil
	})
	require.NoError(t, err)
	_, err = b.Subscribe(ch, "other", func(Message) error { count += 10; return nil })
	require.NoError(t, err)

	require.NoError(t, b.Signal(ch))
	require.NoError(t, b.Signal(ch))
	assert.Equal(t, 21, count)
	assert.Equal(t, 1, b.SubscriberCount(ch))
}

func TestHandlerErrorAbortsPush(t *testing.T) {
	b := New()
	ch := NewChannel("failing", KindSignal)
	boom := errors.New("boom")

	reached := false
	_, _ = b.Subscribe(ch, "bad", func(Message) error { return boom })
	_, _ = b.Subscribe(ch, "after", func(Message) error { reached = true; return nil })

	err := b.Signal(ch)
	assert.ErrorIs(t, err, boom)
	assert.False(t, reached)
}

func TestDoubleDisposeIsNoop(t *testing.T) {
	var hooked int
	b := New(WithDisposeHook(func(*Subscription) { hooked++ }))
	ch := NewChannel("dispose", KindData)

	calls := 0
	sub, err := b.Subscribe(ch, "x", func(Message) error { calls++; return nil })
	require.NoError(t, err)
	_, err = b.Subscribe(ch, "y", func(Message) error { return nil })
	require.NoError(t, err)

	sub.Dispose()
	statsOnce := b.Stats()
	countOnce := b.SubscriberCount(ch)

	sub.Dispose()
	assert.Equal(t, statsOnce, b.Stats())
	assert.Equal(t, countOnce, b.SubscriberCount(ch))
	assert.True(t, sub.Disposed())
	assert.Equal(t, 2, hooked)

	require.NoError(t, b.Push(ch, 1))
	assert.Zero(t, calls)
}

func TestOnDataDecodesPayload(t *testing.T) {
	b := New()
	ch := NewChannel("numbers", KindData)

	var got int
	_, err := b.Subscribe(ch, "reader", OnData(func(v int) error { got = v; return nil }))
	require.NoError(t, err)

	require.NoError(t, b.Push(ch, 7))
	assert.Equal(t, 7, got)

	err = b.Push(ch, "seven")
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrPayloadType)
	assert.Equal(t, "reader", perr.Source)
	assert.Equal(t, ch.ID, perr.Channel.ID)
	assert.Contains(t, err.Error(), "reader")
	assert.Contains(t, err.Error(), ch.ID.String())
}

func TestPullSingleResponder(t *testing.T) {
	b := New()
	ch := NewChannel("answer", KindPull)

	_, err := b.SubscribePull(ch, "oracle", func() (any, error) { return []int{1, 2}, nil })
	require.NoError(t, err)

	got, err := Pull[[]int](b, ch)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)

	_, err = Pull[string](b, ch)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "oracle", perr.Source)
}

func TestSecondResponderIsConfigurationError(t *testing.T) {
	b := New()
	ch := NewChannel("answer", KindPull)

	first, err := b.SubscribePull(ch, "first", func() (any, error) { return 1, nil })
	require.NoError(t, err)

	_, err = b.SubscribePull(ch, "second", func() (any, error) { return 2, nil })
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, ErrDuplicateResponder)

	// the slot frees up once the first responder is gone
	first.Dispose()
	_, err = b.SubscribePull(ch, "second", func() (any, error) { return 2, nil })
	require.NoError(t, err)
	v, err := b.Respond(ch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestRespondWithoutResponder(t *testing.T) {
	b := New()
	_, err := b.Respond(GetRectItems)

	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrNoResponder)
	assert.Contains(t, err.Error(), GetRectItems.ID.String())
}

func TestChannelKindMismatch(t *testing.T) {
	b := New()

	_, err := b.Subscribe(GetLineItems, "wrong", OnSignal(func() error { return nil }))
	assert.ErrorIs(t, err, ErrWrongChannelKind)

	_, err = b.SubscribePull(EmptyBatch, "wrong", func() (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrWrongChannelKind)

	assert.ErrorIs(t, b.Signal(GetLineItems), ErrWrongChannelKind)

	_, err = b.Respond(EmptyBatch)
	assert.ErrorIs(t, err, ErrWrongChannelKind)

	_, err = b.Subscribe(EmptyBatch, "nil", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestCatalogIdentifiersAreUnique(t *testing.T) {
	all := []Channel{
		GLInitialized, BatchSizeChanged,
		RenderTexturesNow, RenderFontNow, RenderRectsNow, RenderLinesNow,
		GetTextureItems, GetFontItems, GetRectItems, GetLineItems,
		EmptyBatch, BatchHasBegun, BatchHasEnded, SystemShuttingDown,
	}
	seen := make(map[string]string, len(all))
	for _, ch := range all {
		prev, dup := seen[ch.ID.String()]
		assert.False(t, dup, "%s reuses the id of %s", ch.Name, prev)
		seen[ch.ID.String()] = ch.Name
	}
	assert.NotEqual(t, NewChannel("a", KindSignal).ID, NewChannel("a", KindSignal).ID)
}
