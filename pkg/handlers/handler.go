// Package handlers implements the per-domain operation handlers that
// translate between the internal and wire message models over an owned
// link pair, and the dispatcher that routes messages to the first handler
// claiming them.
package handlers

import (
    "fmt"

    "twinlink/pkg/links"
    "twinlink/pkg/operation"
    "twinlink/pkg/wire"
)

// Outbound is the result of a successful outbound translation: the wire
// message plus the resolved operation kind for the send path.
type Outbound struct {
    Wire *wire.Message
    Kind operation.Kind
}

// Handler is one operation domain bound to a link pair. Translation methods
// return nil (not an error) for messages the handler does not own; callers
// try handlers in turn until one claims the message.
type Handler interface {
    // IsLinkFound claims a link-opened event by tag, marking the matched
    // link opened.
    IsLinkFound(linkName string) bool

    // SendIfOwned hands an encoded frame to the owned sender link when the
    // kind belongs to this handler; otherwise returns a rejected result
    // without touching the link.
    SendIfOwned(kind operation.Kind, data []byte, deliveryTag []byte) (links.SendResult, error)

    // TranslateOutbound maps an internal message to wire form.
    TranslateOutbound(m *operation.Message) (*Outbound, error)

    // TranslateInbound maps a wire message to a classified internal message.
    TranslateInbound(w *wire.Message) (*operation.Message, error)

    // Receive reads the next pending message from the named receiver link
    // and classifies it. Returns (nil, nil) when the link is not owned or
    // nothing is pending.
    Receive(linkName string) (*operation.Message, error)
}

// applyOutboundAppProps copies non-reserved user properties plus the routing
// and connection-identity fields into wire application properties.
func applyOutboundAppProps(w *wire.Message, m *operation.Message) {
    for k, v := range m.Properties {
        if wire.IsReserved(k) { continue }
        w.SetAppProp(k, v)
    }
    if m.OutputName != "" {
        w.SetAppProp(wire.PropOutputName, m.OutputName)
    }
    if m.ConnectionDeviceID != "" {
        w.SetAppProp(wire.PropConnectionDeviceID, m.ConnectionDeviceID)
    }
    if m.ConnectionModuleID != "" {
        w.SetAppProp(wire.PropConnectionModuleID, m.ConnectionModuleID)
    }
}

// applyInboundUserProps copies a wire key/value bag into the internal user
// property set, dropping reserved keys. The input-name key is not a user
// property; it routes to the dedicated input-channel field.
func applyInboundUserProps(m *operation.Message, bag map[string]any) {
    for k, v := range bag {
        if k == wire.PropInputName {
            m.InputName = fmt.Sprint(v)
            continue
        }
        if wire.IsReserved(k) { continue }
        m.SetProperty(k, fmt.Sprint(v))
    }
}
