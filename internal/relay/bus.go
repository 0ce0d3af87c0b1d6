package relay

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BusMessage is one relay event forwarded between instances. Room is empty
// for direct (unicast) delivery, To is empty for room fan-out.
type BusMessage struct {
	Origin string  `json:"origin"`
	Room   string  `json:"room,omitempty"`
	To     string  `json:"to,omitempty"`
	Msg    Message `json:"msg"`
}

// Bus carries relay events across instances over redis pub/sub, so two
// peers of one room can sit on different processes.
type Bus struct {
	rdb      *redis.Client
	instance string
}

func NewBus(ctx context.Context, addr string, db int) (*Bus, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Bus{rdb: rdb, instance: uuid.NewString()}, nil
}

func (b *Bus) PublishRoom(room string, msg Message) {
	b.publish(roomChannel(room), BusMessage{Origin: b.instance, Room: room, Msg: msg})
}

func (b *Bus) PublishDirect(to string, msg Message) {
	b.publish(directChannel, BusMessage{Origin: b.instance, To: to, Msg: msg})
}

func (b *Bus) publish(channel string, bm BusMessage) {
	raw, _ := json.Marshal(bm)
	if err := b.rdb.Publish(context.Background(), channel, raw).Err(); err != nil {
		slog.Warn("bus publish failed", "channel", channel, "err", err)
	}
}

// Run subscribes to all relay channels and hands remote messages to the
// hub until ctx is done. Own messages are skipped to avoid echo loops.
func (b *Bus) Run(ctx context.Context, h *Hub) {
	pubsub := b.rdb.PSubscribe(ctx, "relay:*")
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var bm BusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
				continue
			}
			if bm.Origin == b.instance {
				continue
			}
			h.deliverLocal(bm.Room, bm.To, bm.Msg)
		}
	}
}

func (b *Bus) Close() { _ = b.rdb.Close() }

const directChannel = "relay:direct"

func roomChannel(room string) string { return "relay:room:" + room }
