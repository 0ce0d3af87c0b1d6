package registry

import (
	"sync"

	"github.com/streamcart/signal-service/internal/domain"
)

// RoomStatus is one row of the /rooms status surface.
type RoomStatus struct {
	Room    string `json:"roomId"`
	Viewers int    `json:"viewers"`
}

// Registry tracks which connection ids currently belong to which room.
// Pure in-memory state; a room exists exactly while it has members.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{} // room -> set of member ids
}

func New() *Registry {
	return &Registry{rooms: make(map[string]map[string]struct{})}
}

// Join adds memberID to the room's set and returns the updated count.
// Re-adding an existing member is a no-op.
func (r *Registry) Join(room, memberID string) int {
	room = domain.SanitizeRoom(room)

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.rooms[room]
	if !ok {
		set = make(map[string]struct{})
		r.rooms[room] = set
	}
	set[memberID] = struct{}{}

	return len(set)
}

// Leave removes memberID from the room; unknown members are a no-op.
func (r *Registry) Leave(room, memberID string) {
	room = domain.SanitizeRoom(room)

	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.rooms[room]; ok {
		delete(set, memberID)
		if len(set) == 0 {
			delete(r.rooms, room)
		}
	}
}

// RemoveConnection removes memberID from every room it is a member of and
// returns those rooms so the caller can emit one "left" notification per
// room. Idempotent under duplicate disconnect signals.
func (r *Registry) RemoveConnection(memberID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var left []string
	for room, set := range r.rooms {
		if _, ok := set[memberID]; !ok {
			continue
		}
		delete(set, memberID)
		left = append(left, room)
		if len(set) == 0 {
			delete(r.rooms, room)
		}
	}

	return left
}

// Members returns the current member ids of a room.
func (r *Registry) Members(room string) []string {
	room = domain.SanitizeRoom(room)

	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.rooms[room]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}

	return out
}

// Count returns the member count of a room.
func (r *Registry) Count(room string) int {
	room = domain.SanitizeRoom(room)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[room])
}

// ActiveRooms returns every room with at least one member.
func (r *Registry) ActiveRooms() []RoomStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RoomStatus, 0, len(r.rooms))
	for room, set := range r.rooms {
		if len(set) > 0 {
			out = append(out, RoomStatus{Room: room, Viewers: len(set)})
		}
	}

	return out
}
