package operation

import "github.com/google/uuid"

// Message is the internal representation a handler exchanges with the
// application/dispatch layer. It mirrors the wire envelope fields plus the
// explicit operation kind and the twin status/version tokens.
type Message struct {
    Kind Kind

    MessageID     string
    CorrelationID string
    To            string
    UserID        string

    // Status and Version are twin-only annotation tokens, carried verbatim.
    // Version is a string-encoded integer on update-reported requests.
    Status  string
    Version string

    // InputName/OutputName are telemetry-only channel names for
    // module-to-module routing.
    InputName  string
    OutputName string

    // Connection identity stamped on outbound messages when set.
    ConnectionDeviceID string
    ConnectionModuleID string

    Properties map[string]string
    Body       []byte
}

// SetProperty sets a user property, allocating the bag on first use.
func (m *Message) SetProperty(key, value string) {
    if m.Properties == nil {
        m.Properties = make(map[string]string)
    }
    m.Properties[key] = value
}

// NewCorrelationID generates a fresh request identifier. One id is minted
// per outstanding request and never reused while its entry is live.
func NewCorrelationID() string { return uuid.NewString() }
