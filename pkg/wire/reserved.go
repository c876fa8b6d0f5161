package wire

import "strings"

// Annotation keys used by the twin resource protocol.
const (
    AnnotationOperation = "operation"
    AnnotationResource  = "resource"
    AnnotationStatus    = "status"
    AnnotationVersion   = "version"
)

// Operation verbs carried in the operation annotation.
const (
    VerbGet    = "GET"
    VerbPatch  = "PATCH"
    VerbPut    = "PUT"
    VerbDelete = "DELETE"
)

// Resource paths carried in the resource annotation.
const (
    ResourceReported             = "/properties/reported"
    ResourceDesired              = "/properties/desired"
    ResourceDesiredNotifications = "/notifications/twin/properties/desired"
)

// Application property keys with protocol-defined meaning. InputName and
// OutputName route module-to-module telemetry; the connection identity keys
// stamp a message with the sending device/module.
const (
    PropInputName          = "x-opt-input-name"
    PropOutputName         = "iothub-outputname"
    PropConnectionDeviceID = "iothub-connection-device-id"
    PropConnectionModuleID = "iothub-connection-module-id"
)

// Link properties attached when a link pair is opened.
const (
    LinkPropAPIVersion     = "com.microsoft:api-version"
    APIVersion             = "2018-06-30"
    LinkPropChannelCorrID  = "com.microsoft:channel-correlation-id"
    TwinChannelCorrPrefix  = "twin:"
)

// reservedNames are property keys that must never surface as ordinary user
// properties in either translation direction.
var reservedNames = map[string]struct{}{
    "message-id":           {},
    "to":                   {},
    "absolute-expiry-time": {},
    "correlation-id":       {},
    "user-id":              {},
    "iothub-ack":           {},
    PropOutputName:         {},
    PropConnectionDeviceID: {},
    PropConnectionModuleID: {},
    PropInputName:          {},
}

// IsReserved reports whether key has protocol-defined meaning and must be
// filtered out of user-visible property sets. The iothub- prefix family is
// reserved wholesale.
func IsReserved(key string) bool {
    if _, ok := reservedNames[key]; ok {
        return true
    }
    return strings.HasPrefix(key, "iothub-")
}
