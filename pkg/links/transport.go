package links

import (
    "context"

    "twinlink/pkg/wire"
)

// NoDeliveryHash is the sentinel returned when a send is rejected before
// reaching the link.
const NoDeliveryHash = -1

// SendResult reports the outcome of handing a frame to a sender link.
type SendResult struct {
    Accepted     bool
    DeliveryHash int
}

// Rejected is the result for a message a handler does not own.
func Rejected() SendResult { return SendResult{Accepted: false, DeliveryHash: NoDeliveryHash} }

// Transport is the boundary to the connection layer. Implementations own
// framing, flow control and retry; this core only translates and routes.
type Transport interface {
    // OpenLinks requests both links of a pair to be attached. props carries
    // link properties such as the api version and channel correlation id.
    OpenLinks(ctx context.Context, a Addressing, props map[string]string) error

    // SendRaw hands one encoded frame to the named sender link.
    SendRaw(linkTag string, data []byte, deliveryTag []byte) (SendResult, error)

    // ReceiveRaw returns the next pending wire message on the named
    // receiver link, or (nil, nil) when nothing is pending.
    ReceiveRaw(linkTag string) (*wire.Message, error)
}
