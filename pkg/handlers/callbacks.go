package handlers

import (
    "sync"

    "twinlink/pkg/operation"
)

// MessageCallback is the application-supplied sink for classified inbound
// messages. ctx is the opaque context registered with the callback;
// invocation threading is the caller's concern.
type MessageCallback func(m *operation.Message, ctx any)

type callbackEntry struct {
    cb  MessageCallback
    ctx any
}

// Callbacks maps inbound messages to registered application callbacks:
// one twin callback, plus telemetry callbacks keyed by input channel name
// with a default for plain device messages.
type Callbacks struct {
    mu               sync.RWMutex
    twin             callbackEntry
    telemetryDefault callbackEntry
    telemetryByInput map[string]callbackEntry
}

func NewCallbacks() *Callbacks {
    return &Callbacks{telemetryByInput: make(map[string]callbackEntry)}
}

// RegisterTwin sets the callback for all twin responses and notifications.
func (c *Callbacks) RegisterTwin(cb MessageCallback, ctx any) {
    c.mu.Lock()
    c.twin = callbackEntry{cb: cb, ctx: ctx}
    c.mu.Unlock()
}

// RegisterTelemetry sets the default telemetry callback.
func (c *Callbacks) RegisterTelemetry(cb MessageCallback, ctx any) {
    c.mu.Lock()
    c.telemetryDefault = callbackEntry{cb: cb, ctx: ctx}
    c.mu.Unlock()
}

// RegisterTelemetryInput sets the telemetry callback for one input channel.
func (c *Callbacks) RegisterTelemetryInput(inputName string, cb MessageCallback, ctx any) {
    c.mu.Lock()
    c.telemetryByInput[inputName] = callbackEntry{cb: cb, ctx: ctx}
    c.mu.Unlock()
}

// resolve picks the callback for a classified message. Telemetry resolves
// by input name first, then the default; everything else is twin.
func (c *Callbacks) resolve(m *operation.Message) (MessageCallback, any) {
    c.mu.RLock()
    defer c.mu.RUnlock()
    if m.Kind == operation.KindTelemetry {
        if m.InputName != "" {
            if e, ok := c.telemetryByInput[m.InputName]; ok {
                return e.cb, e.ctx
            }
        }
        return c.telemetryDefault.cb, c.telemetryDefault.ctx
    }
    return c.twin.cb, c.twin.ctx
}
