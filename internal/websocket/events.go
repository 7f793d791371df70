package websocket

import "encoding/json"

// EventOnlineUsers is the wire event broadcast to every client whenever the
// online-user set changes. Its data is the array of online user IDs. The
// name is the de-facto protocol and must not change.
const EventOnlineUsers = "getOnlineUsers"

// Envelope is the frame format exchanged with clients: an event name plus
// its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope marshals a payload into a wire frame for the given event.
func NewEnvelope(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
