package tracing

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	// KeySlot is the image slot an upload belongs to
	KeySlot = tag.MustNewKey("slot")
	// KeyOutcome is hosted, measured or default for uploads and ok or failed for sends
	KeyOutcome = tag.MustNewKey("outcome")
	// KeyStrategy is the send strategy
	KeyStrategy = tag.MustNewKey("strategy")
)

var (
	GenerationCount   = stats.Int64("ampmailer/generations", "Number of generation passes", stats.UnitDimensionless)
	ConformanceErrors = stats.Int64("ampmailer/conformance_errors", "Conformance errors per generated document", stats.UnitDimensionless)
	SlotResolutions   = stats.Int64("ampmailer/slot_resolutions", "Image slot resolutions by outcome", stats.UnitDimensionless)
	SendCount         = stats.Int64("ampmailer/sends", "Send attempts by strategy and outcome", stats.UnitDimensionless)
	SendLatency       = stats.Float64("ampmailer/send_latency", "Send latency", stats.UnitMilliseconds)
)

// MailerViews aggregate the mailer measures
var MailerViews = []*view.View{
	{
		Name:        "ampmailer/generations",
		Measure:     GenerationCount,
		Description: "Number of generation passes",
		Aggregation: view.Count(),
	},
	{
		Name:        "ampmailer/conformance_errors",
		Measure:     ConformanceErrors,
		Description: "Distribution of conformance errors per document",
		Aggregation: view.Distribution(0, 1, 2, 3),
	},
	{
		Name:        "ampmailer/slot_resolutions",
		Measure:     SlotResolutions,
		Description: "Image slot resolutions by slot and outcome",
		TagKeys:     []tag.Key{KeySlot, KeyOutcome},
		Aggregation: view.Count(),
	},
	{
		Name:        "ampmailer/sends",
		Measure:     SendCount,
		Description: "Send attempts by strategy and outcome",
		TagKeys:     []tag.Key{KeyStrategy, KeyOutcome},
		Aggregation: view.Count(),
	},
	{
		Name:        "ampmailer/send_latency",
		Measure:     SendLatency,
		Description: "Send latency distribution",
		TagKeys:     []tag.Key{KeyStrategy},
		Aggregation: view.Distribution(50, 100, 250, 500, 1000, 2500, 5000, 10000),
	},
}

// RecordGeneration records one generation pass and its conformance error count
func RecordGeneration(ctx context.Context, conformanceErrors int) {
	stats.Record(ctx, GenerationCount.M(1), ConformanceErrors.M(int64(conformanceErrors)))
}

// RecordSlotResolution counts a slot resolution
func RecordSlotResolution(ctx context.Context, slot, outcome string) {
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeySlot, slot), tag.Upsert(KeyOutcome, outcome)},
		SlotResolutions.M(1),
	)
}

// RecordSend counts a send attempt and its latency
func RecordSend(ctx context.Context, strategy string, ok bool, latencyMs float64) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyStrategy, strategy), tag.Upsert(KeyOutcome, outcome)},
		SendCount.M(1),
	)
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyStrategy, strategy)},
		SendLatency.M(latencyMs),
	)
}
