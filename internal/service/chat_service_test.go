package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamcart/signal-service/internal/domain"
	"github.com/streamcart/signal-service/internal/memory"
)

func TestAppendValidation(t *testing.T) {
	svc := NewChatService(memory.NewChatStore())
	ctx := context.Background()

	_, err := svc.Append(ctx, "live1", "alice", "")
	require.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = svc.Append(ctx, "live1", "alice", "   \t\n ")
	require.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = svc.Append(ctx, "live1", "alice", strings.Repeat("x", 4001))
	require.ErrorIs(t, err, domain.ErrMessageTooLong)

	_, err = svc.Append(ctx, "///", "alice", "hi")
	require.ErrorIs(t, err, domain.ErrRoomRequired)
}

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	svc := NewChatService(memory.NewChatStore())
	ctx := context.Background()

	var last int64
	for _, text := range []string{"one", "two", "three"} {
		m, err := svc.Append(ctx, "live1", "alice", text)
		require.NoError(t, err)
		require.Greater(t, m.ID, last)
		require.Equal(t, text, m.Body)
		require.False(t, m.CreatedAt.IsZero())
		last = m.ID
	}
}

func TestAppendDefaultsUsername(t *testing.T) {
	svc := NewChatService(memory.NewChatStore())

	m, err := svc.Append(context.Background(), "live1", "  ", "hi")
	require.NoError(t, err)
	require.Equal(t, "Anonymous", m.Username)
}

func TestListOldestFirstCapped(t *testing.T) {
	store := memory.NewChatStore()
	svc := NewChatService(store)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		_, err := svc.Append(ctx, "live1", "alice", "msg")
		require.NoError(t, err)
	}

	// the cap applies even when the caller asks for more
	msgs, err := svc.List(ctx, "live1", 1000)
	require.NoError(t, err)
	require.Len(t, msgs, 100)
	for i := 1; i < len(msgs); i++ {
		require.Less(t, msgs[i-1].ID, msgs[i].ID)
	}
}

func TestLatest(t *testing.T) {
	svc := NewChatService(memory.NewChatStore())
	ctx := context.Background()

	none, err := svc.Latest(ctx, "live1")
	require.NoError(t, err)
	require.Nil(t, none)

	_, err = svc.Append(ctx, "live1", "alice", "first")
	require.NoError(t, err)
	m2, err := svc.Append(ctx, "live1", "bob", "second")
	require.NoError(t, err)

	got, err := svc.Latest(ctx, "live1")
	require.NoError(t, err)
	require.Equal(t, m2.ID, got.ID)
	require.Equal(t, "second", got.Body)
}
