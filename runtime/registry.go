package runtime

import (
	"iter"
	"slices"
	"sync"

	"ws-backend/contract"
	"ws-backend/domain"
	"ws-backend/errors"

	"github.com/samber/lo"
)

type Set[T comparable] map[T]struct{}

// Subscriber is what a broadcast needs to know about one live connection.
type Subscriber struct {
	ID        domain.ConnectionID
	SubjectID string
	Sink      contract.Sink
}

type entry struct {
	subscriber Subscriber
	rooms      Set[domain.RoomID]
}

// Registry tracks live connections and the rooms each one has joined.
// A single RWMutex guards both maps; nothing is ever sent while it is held.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[domain.ConnectionID]*entry              // connection -> entry
	roomMembers map[domain.RoomID]Set[domain.ConnectionID] // room -> connections
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[domain.ConnectionID]*entry),
		roomMembers: make(map[domain.RoomID]Set[domain.ConnectionID]),
	}
}

// Register records an authenticated connection with an empty room set and
// returns the handle used by every other operation.
func (r *Registry) Register(subjectID string, sink contract.Sink) domain.ConnectionID {
	id := domain.NewConnectionID()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = &entry{
		subscriber: Subscriber{ID: id, SubjectID: subjectID, Sink: sink},
		rooms:      make(Set[domain.RoomID]),
	}
	return id
}

// Unregister removes the connection and every membership it holds.
// It reports false when the handle was already gone, so transport close and
// broadcast pruning can both call it.
func (r *Registry) Unregister(id domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	for room := range e.rooms {
		r.removeMember(room, id)
	}
	delete(r.sessions, id)
	return true
}

// JoinRoom adds room to the connection's set. Joining twice is a no-op.
func (r *Registry) JoinRoom(id domain.ConnectionID, room domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return errors.ErrUnknownConnection
	}
	e.rooms[room] = struct{}{}

	if _, ok := r.roomMembers[room]; !ok {
		r.roomMembers[room] = make(Set[domain.ConnectionID])
	}
	r.roomMembers[room][id] = struct{}{}
	return nil
}

// LeaveRoom removes room from the connection's set. Leaving a room that was
// never joined is a no-op.
func (r *Registry) LeaveRoom(id domain.ConnectionID, room domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return errors.ErrUnknownConnection
	}
	delete(e.rooms, room)
	r.removeMember(room, id)
	return nil
}

// removeMember must be called with the write lock held.
func (r *Registry) removeMember(room domain.RoomID, id domain.ConnectionID) {
	members, ok := r.roomMembers[room]
	if !ok {
		return
	}
	delete(members, id)
	// drop empty rooms so the map does not grow with every room ever seen
	if len(members) == 0 {
		delete(r.roomMembers, room)
	}
}

// SubscribersOf copies the subscribers of room under the read lock.
// The returned snapshot never observes later joins or leaves.
func (r *Registry) SubscribersOf(room domain.RoomID) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.roomMembers[room]
	subscribers := make([]Subscriber, 0, len(members))
	for id := range members {
		if e, ok := r.sessions[id]; ok {
			subscribers = append(subscribers, e.subscriber)
		}
	}
	return Snapshot{room: room, subscribers: subscribers}
}

func (r *Registry) Lookup(id domain.ConnectionID) (Subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return Subscriber{}, false
	}
	return e.subscriber, true
}

// Rooms returns the rooms joined by a connection, sorted.
func (r *Registry) Rooms(id domain.ConnectionID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil
	}
	rooms := lo.Keys(e.rooms)
	slices.Sort(rooms)
	return rooms
}

// Connections returns every registered subscriber, used on shutdown.
func (r *Registry) Connections() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapToSlice(r.sessions, func(_ domain.ConnectionID, e *entry) Subscriber {
		return e.subscriber
	})
}

type RegistryStats struct {
	Connections int
	Rooms       int
	Memberships int
}

func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RegistryStats{
		Connections: len(r.sessions),
		Rooms:       len(r.roomMembers),
		Memberships: lo.SumBy(lo.Values(r.roomMembers), func(m Set[domain.ConnectionID]) int {
			return len(m)
		}),
	}
}

// Snapshot is the set of subscribers of a room at the instant it was taken.
type Snapshot struct {
	room        domain.RoomID
	subscribers []Subscriber
}

func (s Snapshot) Room() domain.RoomID { return s.room }

func (s Snapshot) Len() int { return len(s.subscribers) }

// All yields every subscriber of the snapshot. It can be ranged over any
// number of times and always yields the same elements.
func (s Snapshot) All() iter.Seq[Subscriber] {
	return func(yield func(Subscriber) bool) {
		for _, sub := range s.subscribers {
			if !yield(sub) {
				return
			}
		}
	}
}
