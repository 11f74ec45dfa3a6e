package notify

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"vanita/rdx"
)

// Emitter publishes mutation events to admin clients. With Redis configured,
// events go through a pub/sub channel so every process's hub sees them;
// without Redis they fan out on the local hub only.
type Emitter struct {
	hub     *Hub
	channel string
}

var defaultEmitter *Emitter

// Init wires the package-level emitter used by handlers.
func Init(hub *Hub) *Emitter {
	channel := os.Getenv("BROADCAST_CHANNEL")
	if channel == "" {
		channel = "order-events"
	}
	defaultEmitter = &Emitter{hub: hub, channel: channel}
	return defaultEmitter
}

// Emit serializes the event and hands it to the default emitter. Events
// emitted while no admin socket is open are lost; that is the contract.
func Emit(ctx context.Context, ev Event) {
	if defaultEmitter == nil {
		return
	}
	defaultEmitter.Emit(ctx, ev)
}

func (e *Emitter) Emit(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("emit %s: marshal: %v", ev.Type, err)
		return
	}

	if rdx.Conn != nil {
		if err := rdx.Conn.Publish(ctx, e.channel, data).Err(); err != nil {
			log.Printf("emit %s: publish: %v", ev.Type, err)
		}
		return
	}

	e.hub.Send(data)
}

// Listen bridges the Redis channel back onto the local hub. Run it in a
// goroutine when Redis is configured; it returns when the subscription or
// context ends.
func (e *Emitter) Listen(ctx context.Context) {
	if rdx.Conn == nil {
		return
	}
	sub := rdx.Conn.Subscribe(ctx, e.channel)
	defer sub.Close()

	for msg := range sub.Channel() {
		e.hub.Send([]byte(msg.Payload))
	}
}
