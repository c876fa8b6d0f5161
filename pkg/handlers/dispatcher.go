package handlers

import (
    "go.uber.org/zap"

    "twinlink/pkg/links"
    "twinlink/pkg/operation"
    "twinlink/pkg/wire"
)

// FrameEncoder turns a wire message into the raw frame the connection layer
// sends. Framing below the property layer belongs to that layer; the
// dispatcher only needs the bytes.
type FrameEncoder func(w *wire.Message) ([]byte, error)

// Inbound is a classified inbound message paired with the application
// callback it should be dispatched to.
type Inbound struct {
    Message  *operation.Message
    Callback MessageCallback
    Context  any
}

// Dispatcher routes messages and link events across a fixed set of
// handlers: the first handler to claim a message wins. Handler order is
// fixed at construction; untyped outbound messages are claimed by the
// telemetry handler, so it should come first.
type Dispatcher struct {
    handlers  []Handler
    callbacks *Callbacks
    encode    FrameEncoder
}

func NewDispatcher(encode FrameEncoder, callbacks *Callbacks, hs ...Handler) *Dispatcher {
    return &Dispatcher{handlers: hs, callbacks: callbacks, encode: encode}
}

// OnLinkOpened fans a link-opened event out to the handlers until one
// claims the tag. Returns false for links no handler owns.
func (d *Dispatcher) OnLinkOpened(linkName string) bool {
    for _, h := range d.handlers {
        if h.IsLinkFound(linkName) {
            zap.L().Debug("link claimed", zap.String("link", linkName))
            return true
        }
    }
    zap.L().Debug("link not claimed", zap.String("link", linkName))
    return false
}

// ClassifyAndSend translates m with the first handler that accepts it and
// hands the encoded frame to that handler's sender link. A rejected result
// with nil error means no handler owns this message kind.
func (d *Dispatcher) ClassifyAndSend(m *operation.Message, deliveryTag []byte) (links.SendResult, error) {
    for _, h := range d.handlers {
        out, err := h.TranslateOutbound(m)
        if err != nil {
            return links.Rejected(), err
        }
        if out == nil {
            continue
        }
        data, err := d.encode(out.Wire)
        if err != nil {
            return links.Rejected(), operation.Malformedf("encode-frame", "%v", err)
        }
        return h.SendIfOwned(out.Kind, data, deliveryTag)
    }
    return links.Rejected(), nil
}

// ReceiveAndClassify drains one message from whichever handler owns
// linkName and resolves the application callback for it. Returns
// (nil, nil) when nothing is pending.
func (d *Dispatcher) ReceiveAndClassify(linkName string) (*Inbound, error) {
    for _, h := range d.handlers {
        m, err := h.Receive(linkName)
        if err != nil {
            return nil, err
        }
        if m == nil {
            continue
        }
        cb, ctx := d.callbacks.resolve(m)
        return &Inbound{Message: m, Callback: cb, Context: ctx}, nil
    }
    return nil, nil
}
