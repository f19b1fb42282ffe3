package services

// Realtime event names pushed over the websocket channel. The channel is
// best-effort: nothing in the services depends on delivery.
const (
	EventReceiveMessage = "receiveMessage"
	EventPostLiked      = "postLiked"
	EventPostCommented  = "postCommented"
	EventUserFollowed   = "userFollowed"
	EventNotification   = "notification"
)

// EventPublisher pushes ephemeral events to connected clients. Implemented
// by the realtime hub; a no-op implementation is used when the realtime
// channel is disabled.
type EventPublisher interface {
	// PublishTo delivers an event to the room keyed by account id.
	PublishTo(accountID, event string, payload any)
	// Broadcast delivers an event to every connected client.
	Broadcast(event string, payload any)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) PublishTo(string, string, any) {}
func (NopPublisher) Broadcast(string, any)         {}
