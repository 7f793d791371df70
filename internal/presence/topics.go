package presence

import "github.com/nholden/beacon/internal/pubsub"

// OnlineUsersPayload is the bus payload published whenever the set of online
// users changes. The websocket bridge relays it to every connected client as
// the "getOnlineUsers" wire event.
type OnlineUsersPayload struct {
	Users []string `json:"users"`
}

// TopicOnlineUsers carries the full online-user set after every registry change.
var TopicOnlineUsers = pubsub.NewEvent[OnlineUsersPayload]("presence.online_users")
