package main

import (
    "context"
    "os"

    "go.uber.org/zap"

    "twinlink/pkg/config"
    "twinlink/pkg/handlers"
    "twinlink/pkg/links/mem"
    "twinlink/pkg/observability"
    "twinlink/pkg/operation"
    "twinlink/pkg/wire"
    "twinlink/pkg/wire/codec"
)

// run is the main entry point after CLI parsing. It wires the operation
// handlers over the in-memory transport and exercises one telemetry send
// plus a twin get/subscribe round, standing in for a real connection layer.
func run(opts Options) int {
    cfg, err := config.Load(opts.ConfigPath)
    if err != nil {
        _, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
        return 1
    }

    logger, err := observability.SetupLogger(cfg.Log)
    if err != nil {
        _, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
        return 1
    }
    defer func() { _ = logger.Sync() }()

    zap.L().Info("twinlink-device started", zap.String("app", cfg.AppName),
        zap.String("device_id", cfg.DeviceID), zap.String("module_id", cfg.ModuleID))

    reg := codec.NewRegistry()
    cborCodec, err := codec.CBOR()
    if err != nil {
        zap.L().Error("init cbor codec", zap.Error(err))
        return 1
    }
    reg.Register(cborCodec)
    jsonCodec := reg.Get(codec.ContentJSON)
    encode := func(w *wire.Message) ([]byte, error) { return jsonCodec.Marshal(w) }

    tr := mem.New()
    telemetry := handlers.NewTelemetry(tr, cfg.DeviceID, cfg.ModuleID)
    twin := handlers.NewTwin(tr, cfg.DeviceID, cfg.ModuleID)

    callbacks := handlers.NewCallbacks()
    callbacks.RegisterTwin(func(m *operation.Message, _ any) {
        doc, err := operation.DecodeTwinBody(cborCodec, m)
        if err != nil {
            zap.L().Warn("decode twin body", zap.Error(err))
        }
        zap.L().Info("twin message", zap.String("kind", m.Kind.String()),
            zap.String("status", m.Status), zap.String("version", m.Version),
            zap.Int("fields", len(doc)))
    }, nil)
    callbacks.RegisterTelemetry(func(m *operation.Message, _ any) {
        zap.L().Info("telemetry message", zap.Int("bytes", len(m.Body)))
    }, nil)

    dispatcher := handlers.NewDispatcher(encode, callbacks, telemetry, twin)
    tr.OnLinkOpened(func(name string) { dispatcher.OnLinkOpened(name) })

    ctx := context.Background()
    if err := telemetry.Open(ctx); err != nil {
        zap.L().Error("open telemetry links", zap.Error(err))
        return 1
    }
    if err := twin.Open(ctx); err != nil {
        zap.L().Error("open twin links", zap.Error(err))
        return 1
    }

    // One telemetry event.
    res, err := dispatcher.ClassifyAndSend(operation.NewTelemetry([]byte(`{"temp":21.5}`)), []byte("d-1"))
    if err != nil {
        zap.L().Error("telemetry send", zap.Error(err))
        return 1
    }
    zap.L().Info("telemetry sent", zap.Bool("accepted", res.Accepted), zap.Int("delivery", res.DeliveryHash))

    // Twin get, reported-property patch, desired-property subscription.
    get := operation.NewTwinGet()
    patch, err := operation.NewTwinReportedPatch(cborCodec, "", map[string]any{"firmware": "1.0.3"})
    if err != nil {
        zap.L().Error("build reported patch", zap.Error(err))
        return 1
    }
    for _, req := range []*operation.Message{get, patch, operation.NewTwinSubscribeDesired()} {
        res, err := dispatcher.ClassifyAndSend(req, []byte("d-"+req.CorrelationID[:8]))
        if err != nil {
            zap.L().Error("twin send", zap.String("kind", req.Kind.String()), zap.Error(err))
            return 1
        }
        zap.L().Info("twin request sent", zap.String("kind", req.Kind.String()),
            zap.String("correlation_id", req.CorrelationID),
            zap.Bool("accepted", res.Accepted), zap.Int("delivery", res.DeliveryHash))
    }
    zap.L().Info("outstanding correlation entries", zap.Int("count", twin.Table().Len()))

    // Emulate the hub answering the GET with a twin document, then drain
    // anything the stand-in transport has queued.
    doc, err := cborCodec.Marshal(map[string]any{"desired": map[string]any{"interval": 30}})
    if err != nil {
        zap.L().Error("encode twin document", zap.Error(err))
        return 1
    }
    reply := &wire.Message{
        Properties:  wire.Properties{CorrelationID: get.CorrelationID},
        Annotations: map[string]any{wire.AnnotationStatus: 200},
        Body:        doc,
    }
    tr.Inject(twin.Pair().Addressing().ReceiverTag, reply)

    rx := twin.Pair().Addressing().ReceiverTag
    for {
        in, err := dispatcher.ReceiveAndClassify(rx)
        if err != nil {
            zap.L().Error("receive", zap.Error(err))
            return 1
        }
        if in == nil {
            break
        }
        if in.Callback != nil {
            in.Callback(in.Message, in.Context)
        }
    }
    return 0
}
