package handlers

import (
    "context"
    "fmt"
    "strconv"

    "github.com/google/uuid"

    "twinlink/pkg/links"
    "twinlink/pkg/operation"
    "twinlink/pkg/wire"
)

// Hub endpoint templates for the twin link pair.
const (
    twinSenderPath   = "/devices/%s/twin"
    twinReceiverPath = "/devices/%s/twin"

    twinSenderPathModules   = "/devices/%s/modules/%s/twin"
    twinReceiverPathModules = "/devices/%s/modules/%s/twin"

    twinSenderTagPrefix   = "sender_link_devicetwin-"
    twinReceiverTagPrefix = "receiver_link_devicetwin-"
)

// Twin handles twin GET/PATCH/PUT/DELETE operations. It is stateful: the
// correlation table pairs each outstanding request id with the kind that
// issued it, so an unordered response can be reclassified on arrival.
type Twin struct {
    tr        links.Transport
    pair      *links.Pair
    table     *Table
    deviceID  string
    moduleID  string
    linkProps map[string]string
}

// NewTwin derives the twin link pair for the given identity.
func NewTwin(tr links.Transport, deviceID, moduleID string) *Twin {
    a := links.DeriveAddressing(deviceID, moduleID, links.Templates{
        Sender:            twinSenderPath,
        Receiver:          twinReceiverPath,
        SenderModules:     twinSenderPathModules,
        ReceiverModules:   twinReceiverPathModules,
        SenderTagPrefix:   twinSenderTagPrefix,
        ReceiverTagPrefix: twinReceiverTagPrefix,
    })
    return &Twin{
        tr:       tr,
        pair:     links.NewPair(a),
        table:    NewTable(),
        deviceID: deviceID,
        moduleID: moduleID,
        linkProps: map[string]string{
            wire.LinkPropAPIVersion:    wire.APIVersion,
            wire.LinkPropChannelCorrID: wire.TwinChannelCorrPrefix + uuid.NewString(),
        },
    }
}

// Open requests both twin links to be attached.
func (t *Twin) Open(ctx context.Context) error {
    if err := t.tr.OpenLinks(ctx, t.pair.Addressing(), t.linkProps); err != nil {
        return operation.TransportErr("twin-open", err)
    }
    return nil
}

// Pair exposes the link pair, mainly for the connection layer and tests.
func (t *Twin) Pair() *links.Pair { return t.pair }

// Table exposes the correlation table for inspection and expiry sweeps.
func (t *Twin) Table() *Table { return t.table }

func (t *Twin) IsLinkFound(linkName string) bool { return t.pair.IsLinkFound(linkName) }

// SendIfOwned forwards to the sender link only for twin requests; any other
// kind is rejected without touching link or table state.
func (t *Twin) SendIfOwned(kind operation.Kind, data []byte, deliveryTag []byte) (links.SendResult, error) {
    if !kind.IsTwinRequest() {
        return links.Rejected(), nil
    }
    if !t.pair.SenderOpened() {
        return links.Rejected(), operation.Transportf("twin-send", "sender link not opened")
    }
    res, err := t.tr.SendRaw(t.pair.Addressing().SenderTag, data, deliveryTag)
    if err != nil {
        return res, operation.TransportErr("twin-send", err)
    }
    return res, nil
}

// TranslateOutbound maps a twin request to wire form: the verb/resource
// annotation pair for its kind, the numeric version annotation for reported
// patches, and a correlation entry for the response to match against.
//
// The annotation mapping is validated before the table insert so a failed
// translation leaves no entry behind; the insert happens before the frame
// is handed to the transport, since a response can arrive as soon as the
// send completes.
func (t *Twin) TranslateOutbound(m *operation.Message) (*Outbound, error) {
    if m.Kind == operation.KindTelemetry || m.Kind == operation.KindUnknown {
        return nil, nil
    }
    ann, err := twinRequestAnnotations(m)
    if err != nil {
        return nil, err
    }

    w := &wire.Message{Properties: wire.Properties{MessageID: m.MessageID}}
    if m.CorrelationID != "" {
        if _, err := uuid.Parse(m.CorrelationID); err != nil {
            return nil, operation.Violationf("twin-outbound", "correlation id %q is not a uuid", m.CorrelationID)
        }
        w.Properties.CorrelationID = m.CorrelationID
        t.table.Insert(m.CorrelationID, m.Kind)
    }
    for k, v := range ann {
        w.SetAnnotation(k, v)
    }
    applyOutboundAppProps(w, m)
    w.Body = m.Body
    return &Outbound{Wire: w, Kind: m.Kind}, nil
}

// twinRequestAnnotations returns the operation/resource annotation pair for
// a twin request kind. Any other kind reaching this stage is a defect in
// the caller, reported as a protocol violation.
func twinRequestAnnotations(m *operation.Message) (map[string]any, error) {
    ann := make(map[string]any, 3)
    switch m.Kind {
    case operation.KindTwinGetRequest:
        ann[wire.AnnotationOperation] = wire.VerbGet
    case operation.KindTwinUpdateReportedRequest:
        ann[wire.AnnotationOperation] = wire.VerbPatch
        ann[wire.AnnotationResource] = wire.ResourceReported
        if m.Version != "" {
            n, err := strconv.ParseInt(m.Version, 10, 64)
            if err != nil {
                return nil, operation.Violationf("twin-outbound", "version %q is not an integer", m.Version)
            }
            ann[wire.AnnotationVersion] = n
        }
    case operation.KindTwinSubscribeDesiredRequest:
        ann[wire.AnnotationOperation] = wire.VerbPut
        ann[wire.AnnotationResource] = wire.ResourceDesiredNotifications
    case operation.KindTwinUnsubscribeDesiredRequest:
        ann[wire.AnnotationOperation] = wire.VerbDelete
        ann[wire.AnnotationResource] = wire.ResourceDesiredNotifications
    default:
        return nil, operation.Violationf("twin-outbound", "invalid operation kind %s", m.Kind)
    }
    return ann, nil
}

// TranslateInbound classifies an inbound twin message. Two signals refine
// the kind, in this order: the resource annotation scan, then the
// correlation-table lookup (which wins when both fire). A message with no
// correlation id at all is an unsolicited desired-property notification
// unless the scan already classified it.
func (t *Twin) TranslateInbound(w *wire.Message) (*operation.Message, error) {
    if w == nil {
        return nil, nil
    }
    m := &operation.Message{Kind: operation.KindUnknown}

    if v, ok := w.Annotation(wire.AnnotationStatus); ok {
        m.Status = fmt.Sprint(v)
    }
    if v, ok := w.Annotation(wire.AnnotationVersion); ok {
        m.Version = fmt.Sprint(v)
    }
    if v, ok := w.Annotation(wire.AnnotationResource); ok && fmt.Sprint(v) == wire.ResourceDesired {
        m.Kind = operation.KindTwinSubscribeDesiredResponse
    }

    if corr := w.Properties.CorrelationID; corr != "" {
        m.CorrelationID = corr
        if reqKind, ok := t.table.Take(corr); ok {
            respKind, err := operation.ResponseFor(reqKind)
            if err != nil {
                // Defect signal: the table held a non-request entry. The
                // entry is already removed, so other entries stay intact.
                return nil, err
            }
            m.Kind = respKind
        }
        // Unmatched id: a response to a request this handler never tracked
        // (e.g. after a restart). Keep the annotation-derived kind.
    } else if m.Kind == operation.KindUnknown {
        m.Kind = operation.KindTwinDesiredChangeNotification
    }

    m.MessageID = w.Properties.MessageID
    m.To = w.Properties.To
    m.UserID = w.Properties.UserID
    applyInboundUserProps(m, w.AppProps)
    m.Body = w.Body
    return m, nil
}

func (t *Twin) Receive(linkName string) (*operation.Message, error) {
    if !t.pair.OwnsReceiver(linkName) {
        return nil, nil
    }
    w, err := t.tr.ReceiveRaw(linkName)
    if err != nil {
        return nil, operation.TransportErr("twin-receive", err)
    }
    return t.TranslateInbound(w)
}
