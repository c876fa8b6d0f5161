package handlers

import (
    "context"

    "twinlink/pkg/links"
    "twinlink/pkg/operation"
    "twinlink/pkg/wire"
)

// Hub endpoint templates for the telemetry link pair.
const (
    telemetrySenderPath   = "/devices/%s/messages/events"
    telemetryReceiverPath = "/devices/%s/messages/devicebound"

    telemetrySenderPathModules   = "/devices/%s/modules/%s/messages/events"
    telemetryReceiverPathModules = "/devices/%s/modules/%s/messages/events"

    telemetrySenderTagPrefix   = "sender_link_telemetry-"
    telemetryReceiverTagPrefix = "receiver_link_telemetry-"
)

// Telemetry is the one-way event channel handler. It is stateless: every
// message it handles is tagged KindTelemetry and no correlation is tracked.
type Telemetry struct {
    tr        links.Transport
    pair      *links.Pair
    deviceID  string
    moduleID  string
    linkProps map[string]string
}

// NewTelemetry derives the telemetry link pair for the given identity.
func NewTelemetry(tr links.Transport, deviceID, moduleID string) *Telemetry {
    a := links.DeriveAddressing(deviceID, moduleID, links.Templates{
        Sender:            telemetrySenderPath,
        Receiver:          telemetryReceiverPath,
        SenderModules:     telemetrySenderPathModules,
        ReceiverModules:   telemetryReceiverPathModules,
        SenderTagPrefix:   telemetrySenderTagPrefix,
        ReceiverTagPrefix: telemetryReceiverTagPrefix,
    })
    channel := deviceID
    if moduleID != "" {
        channel = deviceID + "/" + moduleID
    }
    return &Telemetry{
        tr:       tr,
        pair:     links.NewPair(a),
        deviceID: deviceID,
        moduleID: moduleID,
        linkProps: map[string]string{
            wire.LinkPropAPIVersion:    wire.APIVersion,
            wire.LinkPropChannelCorrID: channel,
        },
    }
}

// Open requests both telemetry links to be attached.
func (t *Telemetry) Open(ctx context.Context) error {
    if err := t.tr.OpenLinks(ctx, t.pair.Addressing(), t.linkProps); err != nil {
        return operation.TransportErr("telemetry-open", err)
    }
    return nil
}

// Pair exposes the link pair, mainly for the connection layer and tests.
func (t *Telemetry) Pair() *links.Pair { return t.pair }

func (t *Telemetry) IsLinkFound(linkName string) bool { return t.pair.IsLinkFound(linkName) }

// SendIfOwned forwards to the sender link only for telemetry; any other
// kind is rejected without touching the link.
func (t *Telemetry) SendIfOwned(kind operation.Kind, data []byte, deliveryTag []byte) (links.SendResult, error) {
    if kind != operation.KindTelemetry {
        return links.Rejected(), nil
    }
    if !t.pair.SenderOpened() {
        return links.Rejected(), operation.Transportf("telemetry-send", "sender link not opened")
    }
    res, err := t.tr.SendRaw(t.pair.Addressing().SenderTag, data, deliveryTag)
    if err != nil {
        return res, operation.TransportErr("telemetry-send", err)
    }
    return res, nil
}

// TranslateOutbound accepts telemetry (or untyped) messages and builds the
// wire envelope: envelope properties, non-reserved user properties as
// application properties, routing/identity keys, raw body.
func (t *Telemetry) TranslateOutbound(m *operation.Message) (*Outbound, error) {
    if m.Kind != operation.KindTelemetry && m.Kind != operation.KindUnknown {
        return nil, nil
    }
    w := &wire.Message{Properties: wire.Properties{
        MessageID:     m.MessageID,
        CorrelationID: m.CorrelationID,
    }}
    applyOutboundAppProps(w, m)
    w.Body = m.Body
    return &Outbound{Wire: w, Kind: operation.KindTelemetry}, nil
}

// TranslateInbound tags the message KindTelemetry, copies envelope
// properties, and folds annotations into user properties with the
// input-name redirect. Missing fields simply stay unset.
func (t *Telemetry) TranslateInbound(w *wire.Message) (*operation.Message, error) {
    if w == nil {
        return nil, nil
    }
    m := &operation.Message{
        Kind:          operation.KindTelemetry,
        MessageID:     w.Properties.MessageID,
        CorrelationID: w.Properties.CorrelationID,
        To:            w.Properties.To,
        UserID:        w.Properties.UserID,
    }
    applyInboundUserProps(m, w.Annotations)
    m.Body = w.Body
    return m, nil
}

func (t *Telemetry) Receive(linkName string) (*operation.Message, error) {
    if !t.pair.OwnsReceiver(linkName) {
        return nil, nil
    }
    w, err := t.tr.ReceiveRaw(linkName)
    if err != nil {
        return nil, operation.TransportErr("telemetry-receive", err)
    }
    return t.TranslateInbound(w)
}
