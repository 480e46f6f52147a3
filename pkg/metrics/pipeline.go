package metrics

// Pipeline holds every metric the toolchain records, one field per
// concern. Stages write to the process-wide Default; tests construct
// their own zero-value Pipeline.
type Pipeline struct {
	MessagesEncoded Counter
	MessagesDecoded Counter
	EncodeErrors    Counter
	DecodeErrors    Counter

	LeavesEnumerated Counter
	ProofsGenerated  Counter
	ProofsVerified   Counter
	ProofsFailed     Counter

	SchemaCacheHits    Counter
	SchemaCacheMisses  Counter
	SchemaCacheEntries Gauge

	EncodeLatency      Latency
	DecodeLatency      Latency
	MerkleBuildLatency Latency
}

// Default is the process-wide Pipeline instance.
var Default = &Pipeline{}

// Snapshot returns a point-in-time copy of every metric value, keyed by
// metric name. Latencies that never observed an operation are omitted.
func (p *Pipeline) Snapshot() map[string]any {
	snap := map[string]any{
		"messages_encoded":     p.MessagesEncoded.Value(),
		"messages_decoded":     p.MessagesDecoded.Value(),
		"encode_errors":        p.EncodeErrors.Value(),
		"decode_errors":        p.DecodeErrors.Value(),
		"leaves_enumerated":    p.LeavesEnumerated.Value(),
		"proofs_generated":     p.ProofsGenerated.Value(),
		"proofs_verified":      p.ProofsVerified.Value(),
		"proofs_failed":        p.ProofsFailed.Value(),
		"schema_cache_hits":    p.SchemaCacheHits.Value(),
		"schema_cache_misses":  p.SchemaCacheMisses.Value(),
		"schema_cache_entries": p.SchemaCacheEntries.Value(),
	}
	for name, l := range map[string]*Latency{
		"encode_latency":       &p.EncodeLatency,
		"decode_latency":       &p.DecodeLatency,
		"merkle_build_latency": &p.MerkleBuildLatency,
	} {
		if l.Count() == 0 {
			continue
		}
		snap[name] = map[string]any{
			"count": l.Count(),
			"mean":  l.Mean().String(),
			"max":   l.Max().String(),
		}
	}
	return snap
}
