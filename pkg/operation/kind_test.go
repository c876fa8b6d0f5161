package operation

import (
    "errors"
    "testing"
)

func TestResponseFor(t *testing.T) {
    cases := map[Kind]Kind{
        KindTwinGetRequest:                KindTwinGetResponse,
        KindTwinUpdateReportedRequest:     KindTwinUpdateReportedResponse,
        KindTwinSubscribeDesiredRequest:   KindTwinSubscribeDesiredResponse,
        KindTwinUnsubscribeDesiredRequest: KindTwinUnsubscribeDesiredResponse,
    }
    for req, want := range cases {
        got, err := ResponseFor(req)
        if err != nil {
            t.Fatalf("%s: %v", req, err)
        }
        if got != want {
            t.Fatalf("%s: got %s, want %s", req, got, want)
        }
    }
}

func TestResponseForRejectsNonRequests(t *testing.T) {
    for _, k := range []Kind{KindUnknown, KindTelemetry, KindTwinGetResponse, KindTwinDesiredChangeNotification} {
        if _, err := ResponseFor(k); !IsProtocolViolation(err) {
            t.Fatalf("%s: want protocol violation, got %v", k, err)
        }
    }
}

func TestIsTwinRequest(t *testing.T) {
    if !KindTwinGetRequest.IsTwinRequest() || KindTwinGetResponse.IsTwinRequest() || KindTelemetry.IsTwinRequest() {
        t.Fatalf("IsTwinRequest misclassifies")
    }
}

func TestErrorKindMatching(t *testing.T) {
    err := Violationf("stage", "bad %s", "thing")
    k, ok := KindOf(err)
    if !ok || k != ErrProtocolViolation {
        t.Fatalf("KindOf = %v, %v", k, ok)
    }

    var e *Error
    if !errors.As(err, &e) || e.Op != "stage" {
        t.Fatalf("errors.As failed: %v", err)
    }

    wrapped := TransportErr("send", errors.New("link down"))
    if IsProtocolViolation(wrapped) {
        t.Fatalf("transport error misclassified")
    }
    if k, _ := KindOf(wrapped); k != ErrTransport {
        t.Fatalf("transport kind lost")
    }
}

func TestNewCorrelationIDUnique(t *testing.T) {
    if NewCorrelationID() == NewCorrelationID() {
        t.Fatalf("correlation ids must be unique")
    }
}
