// Package meta holds the pure match-event aggregation pipeline: replaying a
// participant's item event stream, classifying the build it produced, folding
// everything into per-signature win/match counters, and re-flattening persisted
// counter rows into denormalized champion views. Nothing in this package
// performs I/O.
package meta

// Stat is a cumulative win/match counter for one signature.
type Stat struct {
	Wins    int `json:"wins"`
	Matches int `json:"matches"`
}

// StatBucket maps a signature string (item id, build key, rune id, rune-page
// key, spell id, or skill-order string) to its cumulative counters.
type StatBucket map[string]Stat

// Add records one match outcome for the given signature.
func (b StatBucket) Add(sig string, win bool) {
	s := b[sig]
	s.Matches++
	if win {
		s.Wins++
	}
	b[sig] = s
}

// MergeBucket folds src into dst per-signature. The merge is additive, not
// idempotent: feeding the same source twice double-counts, so duplicate match
// processing has to be prevented upstream (scanned_matches), not here. This is
// the one canonical merge used by both the write-side engine and the read-side
// rollup.
func MergeBucket(dst, src StatBucket) {
	for sig, s := range src {
		d := dst[sig]
		d.Wins += s.Wins
		d.Matches += s.Matches
		dst[sig] = d
	}
}
