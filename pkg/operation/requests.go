package operation

import (
    "twinlink/pkg/wire/codec"
)

// NewTelemetry builds an outbound telemetry message.
func NewTelemetry(body []byte) *Message {
    return &Message{Kind: KindTelemetry, MessageID: NewCorrelationID(), Body: body}
}

// NewTwinGet builds a twin GET request with a fresh correlation id.
func NewTwinGet() *Message {
    return &Message{Kind: KindTwinGetRequest, CorrelationID: NewCorrelationID()}
}

// NewTwinSubscribeDesired builds a desired-property subscribe request.
func NewTwinSubscribeDesired() *Message {
    return &Message{Kind: KindTwinSubscribeDesiredRequest, CorrelationID: NewCorrelationID()}
}

// NewTwinUnsubscribeDesired builds a desired-property unsubscribe request.
func NewTwinUnsubscribeDesired() *Message {
    return &Message{Kind: KindTwinUnsubscribeDesiredRequest, CorrelationID: NewCorrelationID()}
}

// NewTwinReportedPatch encodes reported with c and builds an
// update-reported request. version may be empty; when set it must be a
// string-encoded integer or the outbound translation will fail.
func NewTwinReportedPatch(c codec.Codec, version string, reported map[string]any) (*Message, error) {
    body, err := c.Marshal(reported)
    if err != nil {
        return nil, Malformedf("reported-patch", "encode reported properties: %v", err)
    }
    return &Message{
        Kind:          KindTwinUpdateReportedRequest,
        CorrelationID: NewCorrelationID(),
        Version:       version,
        Body:          body,
    }, nil
}

// DecodeTwinBody decodes a twin document or desired-property patch body.
func DecodeTwinBody(c codec.Codec, m *Message) (map[string]any, error) {
    out := make(map[string]any)
    if len(m.Body) == 0 {
        return out, nil
    }
    if err := c.Unmarshal(m.Body, &out); err != nil {
        return nil, Malformedf("twin-body", "decode twin body: %v", err)
    }
    return out, nil
}
