package handlers

import (
    "bytes"
    "context"
    "fmt"
    "strings"
    "testing"

    "twinlink/pkg/links/mem"
    "twinlink/pkg/operation"
    "twinlink/pkg/wire"
    "twinlink/pkg/wire/codec"
)

func openTwin(t *testing.T) (*Twin, *mem.Transport) {
    t.Helper()
    tr := mem.New()
    h := NewTwin(tr, "d1", "")
    tr.OnLinkOpened(func(name string) { h.IsLinkFound(name) })
    if err := h.Open(context.Background()); err != nil {
        t.Fatalf("open: %v", err)
    }
    return h, tr
}

func TestTwinOutboundAnnotationTable(t *testing.T) {
    h, _ := openTwin(t)
    cases := []struct {
        kind     operation.Kind
        verb     string
        resource string
    }{
        {operation.KindTwinGetRequest, wire.VerbGet, ""},
        {operation.KindTwinUpdateReportedRequest, wire.VerbPatch, wire.ResourceReported},
        {operation.KindTwinSubscribeDesiredRequest, wire.VerbPut, wire.ResourceDesiredNotifications},
        {operation.KindTwinUnsubscribeDesiredRequest, wire.VerbDelete, wire.ResourceDesiredNotifications},
    }
    for _, tc := range cases {
        corr := operation.NewCorrelationID()
        out, err := h.TranslateOutbound(&operation.Message{Kind: tc.kind, CorrelationID: corr})
        if err != nil {
            t.Fatalf("%s: %v", tc.kind, err)
        }
        w := out.Wire
        if w.Annotations[wire.AnnotationOperation] != tc.verb {
            t.Fatalf("%s: verb = %v", tc.kind, w.Annotations[wire.AnnotationOperation])
        }
        if tc.resource == "" {
            if _, ok := w.Annotations[wire.AnnotationResource]; ok {
                t.Fatalf("%s: unexpected resource annotation", tc.kind)
            }
        } else if w.Annotations[wire.AnnotationResource] != tc.resource {
            t.Fatalf("%s: resource = %v", tc.kind, w.Annotations[wire.AnnotationResource])
        }
        if k, ok := h.Table().Take(corr); !ok || k != tc.kind {
            t.Fatalf("%s: correlation entry = %s, %v", tc.kind, k, ok)
        }
    }
}

func TestTwinRequestResponsePairing(t *testing.T) {
    h, _ := openTwin(t)
    pairs := map[operation.Kind]operation.Kind{
        operation.KindTwinGetRequest:                operation.KindTwinGetResponse,
        operation.KindTwinUpdateReportedRequest:     operation.KindTwinUpdateReportedResponse,
        operation.KindTwinSubscribeDesiredRequest:   operation.KindTwinSubscribeDesiredResponse,
        operation.KindTwinUnsubscribeDesiredRequest: operation.KindTwinUnsubscribeDesiredResponse,
    }
    for req, resp := range pairs {
        corr := operation.NewCorrelationID()
        if _, err := h.TranslateOutbound(&operation.Message{Kind: req, CorrelationID: corr}); err != nil {
            t.Fatalf("%s outbound: %v", req, err)
        }
        if h.Table().Len() != 1 {
            t.Fatalf("%s: table len = %d", req, h.Table().Len())
        }

        m, err := h.TranslateInbound(&wire.Message{Properties: wire.Properties{CorrelationID: corr}})
        if err != nil {
            t.Fatalf("%s inbound: %v", req, err)
        }
        if m.Kind != resp {
            t.Fatalf("%s: classified as %s, want %s", req, m.Kind, resp)
        }
        if h.Table().Len() != 0 {
            t.Fatalf("%s: entry survived the response", req)
        }
    }
}

func TestTwinResponseMatchedOnce(t *testing.T) {
    h, _ := openTwin(t)
    corr := operation.NewCorrelationID()
    if _, err := h.TranslateOutbound(&operation.Message{Kind: operation.KindTwinGetRequest, CorrelationID: corr}); err != nil {
        t.Fatalf("outbound: %v", err)
    }

    first, err := h.TranslateInbound(&wire.Message{Properties: wire.Properties{CorrelationID: corr}})
    if err != nil || first.Kind != operation.KindTwinGetResponse {
        t.Fatalf("first = %#v, %v", first, err)
    }

    // Same id again: entry consumed, falls back to annotation-less
    // classification with a correlation id present.
    second, err := h.TranslateInbound(&wire.Message{Properties: wire.Properties{CorrelationID: corr}})
    if err != nil {
        t.Fatalf("second: %v", err)
    }
    if second.Kind != operation.KindUnknown {
        t.Fatalf("second = %s, want unknown", second.Kind)
    }
}

func TestTwinOutboundVersionAnnotation(t *testing.T) {
    h, _ := openTwin(t)
    out, err := h.TranslateOutbound(&operation.Message{
        Kind:          operation.KindTwinUpdateReportedRequest,
        CorrelationID: operation.NewCorrelationID(),
        Version:       "7",
    })
    if err != nil {
        t.Fatalf("translate: %v", err)
    }
    if out.Wire.Annotations[wire.AnnotationVersion] != int64(7) {
        t.Fatalf("version annotation = %#v", out.Wire.Annotations[wire.AnnotationVersion])
    }
}

func TestTwinOutboundBadVersionNoPartialMutation(t *testing.T) {
    h, tr := openTwin(t)
    corr := operation.NewCorrelationID()
    out, err := h.TranslateOutbound(&operation.Message{
        Kind:          operation.KindTwinUpdateReportedRequest,
        CorrelationID: corr,
        Version:       "abc",
    })
    if !operation.IsProtocolViolation(err) {
        t.Fatalf("want protocol violation, got %v", err)
    }
    if out != nil {
        t.Fatalf("wire message returned on failure")
    }
    if h.Table().Len() != 0 {
        t.Fatalf("entry inserted despite failed translation")
    }
    if len(tr.SentFrames()) != 0 {
        t.Fatalf("link touched despite failed translation")
    }
}

func TestTwinOutboundInvalidKind(t *testing.T) {
    h, _ := openTwin(t)
    _, err := h.TranslateOutbound(&operation.Message{Kind: operation.KindTwinGetResponse})
    if !operation.IsProtocolViolation(err) {
        t.Fatalf("response kind must be a protocol violation, got %v", err)
    }
}

func TestTwinOutboundDefersTelemetryAndUntyped(t *testing.T) {
    h, _ := openTwin(t)
    for _, k := range []operation.Kind{operation.KindTelemetry, operation.KindUnknown} {
        out, err := h.TranslateOutbound(&operation.Message{Kind: k})
        if out != nil || err != nil {
            t.Fatalf("%s: want deferred, got %#v, %v", k, out, err)
        }
    }
}

func TestTwinInboundPrecedence(t *testing.T) {
    h, _ := openTwin(t)

    // Resource annotation alone: first-pass classification.
    m, err := h.TranslateInbound(&wire.Message{
        Properties:  wire.Properties{CorrelationID: operation.NewCorrelationID()},
        Annotations: map[string]any{wire.AnnotationResource: wire.ResourceDesired},
    })
    if err != nil || m.Kind != operation.KindTwinSubscribeDesiredResponse {
        t.Fatalf("annotation pass = %s, %v", m.Kind, err)
    }

    // Correlation lookup overrides the annotation-derived kind.
    corr := operation.NewCorrelationID()
    if _, err := h.TranslateOutbound(&operation.Message{Kind: operation.KindTwinGetRequest, CorrelationID: corr}); err != nil {
        t.Fatalf("outbound: %v", err)
    }
    m, err = h.TranslateInbound(&wire.Message{
        Properties:  wire.Properties{CorrelationID: corr},
        Annotations: map[string]any{wire.AnnotationResource: wire.ResourceDesired},
    })
    if err != nil || m.Kind != operation.KindTwinGetResponse {
        t.Fatalf("lookup pass = %s, %v", m.Kind, err)
    }
}

func TestTwinInboundUnsolicitedNotification(t *testing.T) {
    h, _ := openTwin(t)

    // No correlation id, no resource annotation: desired-change push.
    m, err := h.TranslateInbound(&wire.Message{Body: []byte(`{"desired":1}`)})
    if err != nil || m.Kind != operation.KindTwinDesiredChangeNotification {
        t.Fatalf("kind = %s, %v", m.Kind, err)
    }

    // Unmatched correlation id with no annotations stays unknown.
    m, err = h.TranslateInbound(&wire.Message{Properties: wire.Properties{CorrelationID: operation.NewCorrelationID()}})
    if err != nil || m.Kind != operation.KindUnknown {
        t.Fatalf("kind = %s, %v", m.Kind, err)
    }
}

func TestTwinInboundStatusAndVersion(t *testing.T) {
    h, _ := openTwin(t)
    m, err := h.TranslateInbound(&wire.Message{
        Annotations: map[string]any{
            wire.AnnotationStatus:  200,
            wire.AnnotationVersion: int64(12),
        },
    })
    if err != nil {
        t.Fatalf("translate: %v", err)
    }
    if m.Status != "200" || m.Version != "12" {
        t.Fatalf("status/version = %q/%q", m.Status, m.Version)
    }
}

func TestTwinInboundPropertyCopy(t *testing.T) {
    h, _ := openTwin(t)
    m, err := h.TranslateInbound(&wire.Message{
        Properties: wire.Properties{MessageID: "m1", To: "/devices/d1/twin", UserID: "u1"},
        AppProps: map[string]any{
            "custom":           "v",
            wire.PropInputName: "in1",
            "iothub-ack":       "full",
        },
        Body: []byte("doc"),
    })
    if err != nil {
        t.Fatalf("translate: %v", err)
    }
    if m.MessageID != "m1" || m.To != "/devices/d1/twin" || m.UserID != "u1" {
        t.Fatalf("envelope fields = %#v", m)
    }
    if m.InputName != "in1" || m.Properties["custom"] != "v" {
        t.Fatalf("properties = %#v, input = %q", m.Properties, m.InputName)
    }
    if _, ok := m.Properties["iothub-ack"]; ok {
        t.Fatalf("reserved property leaked")
    }
    if !bytes.Equal(m.Body, []byte("doc")) {
        t.Fatalf("body mismatch")
    }
}

func TestTwinInboundBadTableEntry(t *testing.T) {
    h, _ := openTwin(t)
    corr := operation.NewCorrelationID()
    // Force a defective entry the public contract can never produce.
    h.Table().Insert(corr, operation.KindTelemetry)

    _, err := h.TranslateInbound(&wire.Message{Properties: wire.Properties{CorrelationID: corr}})
    if !operation.IsProtocolViolation(err) {
        t.Fatalf("want protocol violation, got %v", err)
    }
    // The defective entry is consumed; other entries are unaffected.
    if h.Table().Len() != 0 {
        t.Fatalf("defective entry survived")
    }
}

func TestTwinOutboundBadCorrelationID(t *testing.T) {
    h, _ := openTwin(t)
    _, err := h.TranslateOutbound(&operation.Message{Kind: operation.KindTwinGetRequest, CorrelationID: "not-a-uuid"})
    if !operation.IsProtocolViolation(err) {
        t.Fatalf("want protocol violation, got %v", err)
    }
    if h.Table().Len() != 0 {
        t.Fatalf("entry inserted for invalid id")
    }
}

func TestTwinReportedPatchRoundTrip(t *testing.T) {
    h, _ := openTwin(t)
    c, err := codec.CBOR()
    if err != nil {
        t.Fatalf("cbor: %v", err)
    }

    req, err := operation.NewTwinReportedPatch(c, "3", map[string]any{"firmware": "1.0.3"})
    if err != nil {
        t.Fatalf("patch: %v", err)
    }
    out, err := h.TranslateOutbound(req)
    if err != nil {
        t.Fatalf("outbound: %v", err)
    }
    if out.Wire.Annotations[wire.AnnotationOperation] != wire.VerbPatch ||
        out.Wire.Annotations[wire.AnnotationResource] != wire.ResourceReported {
        t.Fatalf("annotations = %#v", out.Wire.Annotations)
    }
    reported, err := operation.DecodeTwinBody(c, &operation.Message{Body: out.Wire.Body})
    if err != nil {
        t.Fatalf("decode reported: %v", err)
    }
    if reported["firmware"] != "1.0.3" {
        t.Fatalf("reported = %#v", reported)
    }

    // Hub answers with a twin document on the same correlation id.
    body, err := c.Marshal(map[string]any{"interval": 30})
    if err != nil {
        t.Fatalf("encode document: %v", err)
    }
    resp, err := h.TranslateInbound(&wire.Message{
        Properties:  wire.Properties{CorrelationID: req.CorrelationID},
        Annotations: map[string]any{wire.AnnotationStatus: 204},
        Body:        body,
    })
    if err != nil {
        t.Fatalf("inbound: %v", err)
    }
    if resp.Kind != operation.KindTwinUpdateReportedResponse || resp.Status != "204" {
        t.Fatalf("response = %#v", resp)
    }
    doc, err := operation.DecodeTwinBody(c, resp)
    if err != nil {
        t.Fatalf("decode document: %v", err)
    }
    if fmt.Sprint(doc["interval"]) != "30" {
        t.Fatalf("document = %#v", doc)
    }
}

func TestTwinLinkProperties(t *testing.T) {
    h, tr := openTwin(t)
    props := tr.LinkProps(h.Pair().Addressing().SenderTag)
    if props[wire.LinkPropAPIVersion] != wire.APIVersion {
        t.Fatalf("api version = %q", props[wire.LinkPropAPIVersion])
    }
    if !strings.HasPrefix(props[wire.LinkPropChannelCorrID], wire.TwinChannelCorrPrefix) {
        t.Fatalf("channel correlation id = %q", props[wire.LinkPropChannelCorrID])
    }
}

func TestTwinSendOwnership(t *testing.T) {
    h, tr := openTwin(t)

    res, err := h.SendIfOwned(operation.KindTelemetry, []byte("x"), []byte("t1"))
    if err != nil || res.Accepted || res.DeliveryHash != -1 {
        t.Fatalf("telemetry kind must be rejected: %#v, %v", res, err)
    }
    if len(tr.SentFrames()) != 0 || h.Table().Len() != 0 {
        t.Fatalf("rejected send touched link or table")
    }

    res, err = h.SendIfOwned(operation.KindTwinGetRequest, []byte("x"), []byte("t1"))
    if err != nil || !res.Accepted {
        t.Fatalf("twin send failed: %#v, %v", res, err)
    }
}
