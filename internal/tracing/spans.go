package tracing

// Span attribute keys used across the CLI commands.
const (
	AttrObjectType = "object.type"
	AttrObjectID   = "object.id"
	AttrBaselineID = "baseline.id"
	AttrOpCount    = "ops.count"
	AttrFilePath   = "file.path"
	AttrVersion    = "schema.version"
)

// Span names for the operations worth timing.
const (
	SpanLoad      = "document.load"
	SpanDiff      = "document.diff"
	SpanRoundtrip = "document.roundtrip"
	SpanCommit    = "object.commit"
	SpanStore     = "store.save"
)
