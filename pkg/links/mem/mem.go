// Package mem is an in-process link transport. Useful for tests and as a
// stand-in while the real connection layer is wired up.
package mem

import (
    "context"
    "errors"
    "sync"

    "twinlink/pkg/links"
    "twinlink/pkg/wire"
)

// Sent records one frame handed to a sender link.
type Sent struct {
    LinkTag     string
    Data        []byte
    DeliveryTag []byte
}

// Transport queues inbound wire messages per receiver tag and captures
// outbound frames. Links must be opened before they carry traffic, matching
// the real connection contract.
type Transport struct {
    mu       sync.Mutex
    opened   map[string]bool
    props    map[string]map[string]string // by sender tag, for inspection
    inbound  map[string][]*wire.Message
    sent     []Sent
    nextHash int

    // onLinkOpened, when set, is invoked for each link tag right after
    // OpenLinks, emulating the connection's link-opened events.
    onLinkOpened func(linkName string)
}

func New() *Transport {
    return &Transport{
        opened:  make(map[string]bool),
        props:   make(map[string]map[string]string),
        inbound: make(map[string][]*wire.Message),
    }
}

// OnLinkOpened registers the link-opened event sink (typically
// Dispatcher.OnLinkOpened). Must be set before OpenLinks.
func (t *Transport) OnLinkOpened(fn func(linkName string)) { t.onLinkOpened = fn }

func (t *Transport) OpenLinks(_ context.Context, a links.Addressing, props map[string]string) error {
    t.mu.Lock()
    t.opened[a.SenderTag] = true
    t.opened[a.ReceiverTag] = true
    t.props[a.SenderTag] = props
    fn := t.onLinkOpened
    t.mu.Unlock()
    if fn != nil {
        fn(a.SenderTag)
        fn(a.ReceiverTag)
    }
    return nil
}

func (t *Transport) SendRaw(linkTag string, data []byte, deliveryTag []byte) (links.SendResult, error) {
    t.mu.Lock()
    defer t.mu.Unlock()
    if !t.opened[linkTag] {
        return links.Rejected(), errors.New("mem: link not opened: " + linkTag)
    }
    t.nextHash++
    t.sent = append(t.sent, Sent{LinkTag: linkTag, Data: data, DeliveryTag: deliveryTag})
    return links.SendResult{Accepted: true, DeliveryHash: t.nextHash}, nil
}

func (t *Transport) ReceiveRaw(linkTag string) (*wire.Message, error) {
    t.mu.Lock()
    defer t.mu.Unlock()
    if !t.opened[linkTag] {
        return nil, errors.New("mem: link not opened: " + linkTag)
    }
    q := t.inbound[linkTag]
    if len(q) == 0 {
        return nil, nil
    }
    m := q[0]
    t.inbound[linkTag] = q[1:]
    return m, nil
}

// Inject queues an inbound wire message on a receiver link.
func (t *Transport) Inject(linkTag string, m *wire.Message) {
    t.mu.Lock()
    t.inbound[linkTag] = append(t.inbound[linkTag], m)
    t.mu.Unlock()
}

// SentFrames returns a copy of everything handed to sender links so far.
func (t *Transport) SentFrames() []Sent {
    t.mu.Lock()
    defer t.mu.Unlock()
    out := make([]Sent, len(t.sent))
    copy(out, t.sent)
    return out
}

// LinkProps returns the properties the pair was opened with.
func (t *Transport) LinkProps(senderTag string) map[string]string {
    t.mu.Lock()
    defer t.mu.Unlock()
    return t.props[senderTag]
}
