package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanLoad          = "hoard.load"
	SpanSave          = "hoard.save"
	SpanUpsert        = "catalog.upsert"
	SpanDelete        = "catalog.delete"
	SpanGet           = "catalog.get"
	SpanResolve       = "catalog.resolve"
	SpanList          = "catalog.list"
	SpanEvaluate      = "catalog.evaluate"
	SpanRelated       = "catalog.related"
	SpanComponents    = "catalog.components"
	SpanRelationTypes = "catalog.relationship_types"
	SpanReload        = "hoard.reload"
	SpanMetadata      = "catalog.set_metadata"
)

// Attribute keys.
const (
	AttrAssetID       = "asset.id"
	AttrAssetName     = "asset.name"
	AttrIdentType     = "identifier.type"
	AttrTagCount      = "query.tag_count"
	AttrOffset        = "page.offset"
	AttrLimit         = "page.limit"
	AttrResultCount   = "result.count"
	AttrCacheHit      = "cache.hit"
	AttrStoreBackend  = "store.backend"
	AttrSchemaVersion = "schema.version"
	AttrGeneration    = "cache.generation"
)

// Event names.
const (
	EventSchemaMismatch = "schema.mismatch"
	EventCacheFill      = "cache.fill"
)

// Start opens an internal span with the given attributes.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID returns the hex trace id active in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
