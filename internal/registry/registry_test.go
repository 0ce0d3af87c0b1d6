package registry

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinLeaveCount(t *testing.T) {
	r := New()

	require.Equal(t, 1, r.Join("live1", "a"))
	require.Equal(t, 2, r.Join("live1", "b"))
	// re-join is a no-op
	require.Equal(t, 2, r.Join("live1", "a"))
	require.Equal(t, 2, r.Count("live1"))

	r.Leave("live1", "a")
	require.Equal(t, 1, r.Count("live1"))

	// leaving twice or leaving an unknown member changes nothing
	r.Leave("live1", "a")
	r.Leave("live1", "zzz")
	require.Equal(t, 1, r.Count("live1"))

	r.Leave("live1", "b")
	require.Equal(t, 0, r.Count("live1"))
	require.Empty(t, r.ActiveRooms())
}

func TestRemoveConnection(t *testing.T) {
	r := New()
	r.Join("live1", "a")
	r.Join("live2", "a")
	r.Join("live1", "b")

	left := r.RemoveConnection("a")
	sort.Strings(left)
	require.Equal(t, []string{"live1", "live2"}, left)
	require.Equal(t, 1, r.Count("live1"))
	require.Equal(t, 0, r.Count("live2"))

	// duplicate disconnect
	require.Empty(t, r.RemoveConnection("a"))
}

func TestMembers(t *testing.T) {
	r := New()
	r.Join("live1", "a")
	r.Join("live1", "b")

	got := r.Members("live1")
	sort.Strings(got)
	require.Equal(t, []string{"a", "b"}, got)
}

func TestActiveRooms(t *testing.T) {
	r := New()
	r.Join("live1", "a")
	r.Join("live1", "b")
	r.Join("live2", "c")

	rooms := r.ActiveRooms()
	require.Len(t, rooms, 2)
	counts := map[string]int{}
	for _, rm := range rooms {
		counts[rm.Room] = rm.Viewers
	}
	require.Equal(t, map[string]int{"live1": 2, "live2": 1}, counts)
}

func TestRoomNameSanitized(t *testing.T) {
	r := New()
	r.Join("room/../../etc", "a")
	require.Equal(t, 1, r.Count("roometc"))
	require.Equal(t, 1, r.Count("room/../../etc"))
}
