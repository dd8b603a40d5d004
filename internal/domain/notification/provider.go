package notification

import "context"

// PushMessage is the provider-agnostic payload of one push.
type PushMessage struct {
	Title    string
	Body     string
	Category Category

	// Data carries optional key/value pairs for client-side routing.
	Data map[string]string
}

// PushProvider delivers a single push to a single device. Implementations
// translate to a concrete gateway; the engine never sees provider payload
// formats. A returned error marks the attempt failed, nothing more: the
// engine does not retry.
type PushProvider interface {
	Send(ctx context.Context, platform, token string, msg PushMessage) error
}
