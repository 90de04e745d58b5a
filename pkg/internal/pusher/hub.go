package pusher

import (
	"sync"

	"github.com/pollroom/server/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// Subscriber is anything that can take a JSON frame; in production it is the
// poll page's websocket connection.
type Subscriber interface {
	WriteJSON(v any) error
}

// PollUpdateEvent is the contract with live viewers: the full option list
// plus the recomputed total, pushed after every accepted vote. Delivery is
// best effort and at most once; the store stays authoritative, a viewer that
// misses a frame just catches up on the next one.
type PollUpdateEvent struct {
	PollID     uint                `json:"poll_id"`
	Options    []models.PollOption `json:"options"`
	TotalVotes int64               `json:"total_votes"`
}

type Hub struct {
	mtx   sync.Mutex
	rooms map[uint]map[Subscriber]struct{}
}

var H = NewHub()

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[Subscriber]struct{})}
}

func (v *Hub) Subscribe(pollID uint, sub Subscriber) {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	if v.rooms[pollID] == nil {
		v.rooms[pollID] = make(map[Subscriber]struct{})
	}
	v.rooms[pollID][sub] = struct{}{}
}

func (v *Hub) Unsubscribe(pollID uint, sub Subscriber) {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	delete(v.rooms[pollID], sub)
	if len(v.rooms[pollID]) == 0 {
		delete(v.rooms, pollID)
	}
}

func (v *Hub) CountSubscribers(pollID uint) int {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	return len(v.rooms[pollID])
}

// Broadcast fans the event out to every viewer of the poll. A subscriber
// that fails to take the frame is dropped on the spot; reconnecting is the
// client's job.
func (v *Hub) Broadcast(event PollUpdateEvent) {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	var dead []Subscriber
	for sub := range v.rooms[event.PollID] {
		if err := sub.WriteJSON(event); err != nil {
			dead = append(dead, sub)
		}
	}
	for _, sub := range dead {
		delete(v.rooms[event.PollID], sub)
	}
	if len(dead) > 0 {
		log.Debug().Uint("poll", event.PollID).Int("count", len(dead)).
			Msg("Dropped unreachable poll subscribers.")
	}
}

// BroadcastPollUpdate publishes the poll's current counters on the shared hub.
func BroadcastPollUpdate(poll models.Poll) {
	H.Broadcast(PollUpdateEvent{
		PollID:     poll.ID,
		Options:    poll.Options,
		TotalVotes: poll.SumVotes(),
	})
}
