// Package links models the sender/receiver link pair every operation handler
// owns, and the boundary to the connection layer that actually moves bytes.
//
// Addressing is fixed at construction from device identity: a shared
// connection multiplexes many link pairs, and each handler claims its own
// links by tag when the connection reports a link-opened event.
package links

import (
    "fmt"

    "github.com/google/uuid"
)

// State is the lifecycle of a single link. There is no close transition
// here; closure is connection-driven and handled outside this core.
type State int

const (
    StateUnopened State = iota
    StateOpened
)

func (s State) String() string {
    if s == StateOpened {
        return "opened"
    }
    return "unopened"
}

// Templates hold the address templates and tag prefixes for one handler
// domain. Device-scoped templates take the device id; module-scoped ones
// take device id then module id.
type Templates struct {
    Sender          string
    Receiver        string
    SenderModules   string
    ReceiverModules string

    SenderTagPrefix   string
    ReceiverTagPrefix string
}

// Addressing is the derived, immutable link identity: one tag and one
// target address per direction.
type Addressing struct {
    SenderTag       string
    ReceiverTag     string
    SenderAddress   string
    ReceiverAddress string
}

// DeriveAddressing fills the templates with device identity. When moduleID
// is non-empty the module-scoped templates are used and both identifiers
// are embedded in each tag; the choice is made exactly once here.
func DeriveAddressing(deviceID, moduleID string, t Templates) Addressing {
    suffix := uuid.NewString()
    if moduleID != "" {
        return Addressing{
            SenderTag:       t.SenderTagPrefix + deviceID + "/" + moduleID + "-" + suffix,
            ReceiverTag:     t.ReceiverTagPrefix + deviceID + "/" + moduleID + "-" + suffix,
            SenderAddress:   fmt.Sprintf(t.SenderModules, deviceID, moduleID),
            ReceiverAddress: fmt.Sprintf(t.ReceiverModules, deviceID, moduleID),
        }
    }
    return Addressing{
        SenderTag:       t.SenderTagPrefix + deviceID + "-" + suffix,
        ReceiverTag:     t.ReceiverTagPrefix + deviceID + "-" + suffix,
        SenderAddress:   fmt.Sprintf(t.Sender, deviceID),
        ReceiverAddress: fmt.Sprintf(t.Receiver, deviceID),
    }
}

// Pair tracks the open state of one sender/receiver link pair.
// Link-opened events are reported on a single control-plane goroutine, so
// state transitions are unsynchronized by design.
type Pair struct {
    addr      Addressing
    sendState State
    recvState State
}

// NewPair builds a pair in the unopened state.
func NewPair(a Addressing) *Pair { return &Pair{addr: a} }

// Addressing returns the fixed link identity.
func (p *Pair) Addressing() Addressing { return p.addr }

// IsLinkFound claims a link-opened event: an exact tag match marks that
// link opened and returns true; any other name changes nothing.
func (p *Pair) IsLinkFound(linkName string) bool {
    if linkName == p.addr.SenderTag {
        p.sendState = StateOpened
        return true
    }
    if linkName == p.addr.ReceiverTag {
        p.recvState = StateOpened
        return true
    }
    return false
}

// SenderOpened reports whether the sender link has been claimed.
func (p *Pair) SenderOpened() bool { return p.sendState == StateOpened }

// ReceiverOpened reports whether the receiver link has been claimed.
func (p *Pair) ReceiverOpened() bool { return p.recvState == StateOpened }

// OwnsReceiver reports whether linkName names this pair's receiver without
// touching link state.
func (p *Pair) OwnsReceiver(linkName string) bool { return linkName == p.addr.ReceiverTag }
