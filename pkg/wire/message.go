// Package wire defines the structured wire-message model exchanged over a
// link pair. It sits above the raw framing layer: a message is a property
// bag, an annotation bag, application properties and an opaque body. Parsing
// below this layer belongs to the connection/framing code, not here.
package wire

// Properties are the primary envelope properties of a wire message.
type Properties struct {
    MessageID     string `json:"message_id,omitempty"`
    CorrelationID string `json:"correlation_id,omitempty"`
    To            string `json:"to,omitempty"`
    UserID        string `json:"user_id,omitempty"`
}

// Message is a single wire envelope. Annotations carry out-of-band routing
// metadata (operation verb, resource path, status, version); AppProps carry
// application-level key/values; Body is opaque payload bytes.
//
// A Message is built once by a translation stage and not mutated afterwards.
type Message struct {
    Properties  Properties     `json:"properties"`
    Annotations map[string]any `json:"annotations,omitempty"`
    AppProps    map[string]any `json:"app_props,omitempty"`
    Body        []byte         `json:"body,omitempty"`
}

// Annotation returns the named annotation, if present.
func (m *Message) Annotation(key string) (any, bool) {
    if m.Annotations == nil {
        return nil, false
    }
    v, ok := m.Annotations[key]
    return v, ok
}

// SetAnnotation sets an annotation, allocating the bag on first use.
func (m *Message) SetAnnotation(key string, v any) {
    if m.Annotations == nil {
        m.Annotations = make(map[string]any)
    }
    m.Annotations[key] = v
}

// SetAppProp sets an application property, allocating the bag on first use.
func (m *Message) SetAppProp(key string, v any) {
    if m.AppProps == nil {
        m.AppProps = make(map[string]any)
    }
    m.AppProps[key] = v
}
