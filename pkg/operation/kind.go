// Package operation defines the handler-side message model: operation kinds,
// the internal message representation and the typed errors translation
// stages report.
package operation

import "fmt"

// Kind tags every internal message with the logical operation it belongs to.
type Kind int

const (
    KindUnknown Kind = iota
    KindTelemetry
    KindTwinGetRequest
    KindTwinGetResponse
    KindTwinUpdateReportedRequest
    KindTwinUpdateReportedResponse
    KindTwinSubscribeDesiredRequest
    KindTwinSubscribeDesiredResponse
    KindTwinUnsubscribeDesiredRequest
    KindTwinUnsubscribeDesiredResponse
    KindTwinDesiredChangeNotification
)

func (k Kind) String() string {
    switch k {
    case KindTelemetry:
        return "telemetry"
    case KindTwinGetRequest:
        return "twin:get-request"
    case KindTwinGetResponse:
        return "twin:get-response"
    case KindTwinUpdateReportedRequest:
        return "twin:update-reported-request"
    case KindTwinUpdateReportedResponse:
        return "twin:update-reported-response"
    case KindTwinSubscribeDesiredRequest:
        return "twin:subscribe-desired-request"
    case KindTwinSubscribeDesiredResponse:
        return "twin:subscribe-desired-response"
    case KindTwinUnsubscribeDesiredRequest:
        return "twin:unsubscribe-desired-request"
    case KindTwinUnsubscribeDesiredResponse:
        return "twin:unsubscribe-desired-response"
    case KindTwinDesiredChangeNotification:
        return "twin:desired-change"
    default:
        return "unknown"
    }
}

// IsTwinRequest reports whether k is one of the four outbound twin requests.
func (k Kind) IsTwinRequest() bool {
    switch k {
    case KindTwinGetRequest, KindTwinUpdateReportedRequest,
        KindTwinSubscribeDesiredRequest, KindTwinUnsubscribeDesiredRequest:
        return true
    }
    return false
}

// ResponseFor maps a twin request kind to its response counterpart. Anything
// but a twin request is a protocol violation: the correlation table must
// never hold such an entry.
func ResponseFor(k Kind) (Kind, error) {
    switch k {
    case KindTwinGetRequest:
        return KindTwinGetResponse, nil
    case KindTwinUpdateReportedRequest:
        return KindTwinUpdateReportedResponse, nil
    case KindTwinSubscribeDesiredRequest:
        return KindTwinSubscribeDesiredResponse, nil
    case KindTwinUnsubscribeDesiredRequest:
        return KindTwinUnsubscribeDesiredResponse, nil
    }
    return KindUnknown, Violationf("response-for", "no response mapping for operation kind %s", k)
}

var _ fmt.Stringer = KindUnknown
