// Package live turns raw filesystem events into the messages pushed to
// connected browsers, and fans those messages out to subscribers.
package live

// MessageType is the kebab-case wire tag of a live message.
type MessageType string

const (
	// MessageReload instructs the client to reload the whole page.
	MessageReload MessageType = "reload"

	// MessageDiff instructs the client to apply a targeted HTML or CSS
	// update for one web path.
	MessageDiff MessageType = "diff"
)

// Resource is the kind of document a diff message targets.
type Resource string

const (
	ResourceHTML Resource = "html"
	ResourceCSS  Resource = "css"
)

// Message is a client-facing live update. Reload messages carry no
// payload; diff messages carry a web-rooted path and a resource kind.
//
// Wire format: {"type":"reload"} or
// {"type":"diff","path":"/foo/","resource":"html"}.
type Message struct {
	Type     MessageType `json:"type"`
	Path     string      `json:"path,omitempty"`
	Resource Resource    `json:"resource,omitempty"`
}

// Reload builds a full-reload message.
func Reload() Message {
	return Message{Type: MessageReload}
}

// Diff builds a targeted update message. path must be an absolute,
// web-rooted path resolvable under the serving root.
func Diff(path string, resource Resource) Message {
	return Message{Type: MessageDiff, Path: path, Resource: resource}
}
