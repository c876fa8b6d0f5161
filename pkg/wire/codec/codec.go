// Package codec provides pluggable payload codecs for twin documents and
// telemetry bodies. The wire layer treats bodies as opaque bytes; codecs are
// applied by the application edge when building or consuming messages.
package codec

// Codec defines a simple interface for marshaling typed payloads.
// Implementations should be deterministic and safe for cross-peer exchange.
type Codec interface {
    ContentType() string
    Marshal(v any) ([]byte, error)
    Unmarshal(data []byte, v any) error
}

// Content types understood by the built-in codecs.
const (
    ContentJSON    = "application/json"
    ContentCBOR    = "application/cbor"
    ContentMsgpack = "application/msgpack"
    ContentProto   = "application/x-protobuf"
)

// Registry maps content types to codecs.
type Registry struct{ byType map[string]Codec }

// NewRegistry constructs a registry preloaded with built-in codecs
// that don't require initialization: JSON, Msgpack and Protobuf.
// CBOR can be added explicitly via Register(CBOR()).
func NewRegistry() *Registry {
    r := &Registry{byType: make(map[string]Codec)}
    // Built-ins without error paths
    r.Register(JSON())
    r.Register(Msgpack())
    r.Register(Proto())
    return r
}

// Register adds a codec.
func (r *Registry) Register(c Codec) { r.byType[c.ContentType()] = c }

// Get returns a codec by content type, or nil.
func (r *Registry) Get(contentType string) Codec { return r.byType[contentType] }
