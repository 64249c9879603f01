package dialect

import "strings"

// Detect picks the separator for a read operation from one sample line.
//
// Each candidate is counted in the sample; the highest count wins and
// ties go to the candidate listed first. A sample containing none of the
// candidates falls back to comma. Candidates may be nil, in which case
// DefaultCandidates is used.
func Detect(sample string, candidates []byte) byte {
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}

	best := byte(',')
	bestCount := 0
	for _, c := range candidates {
		n := strings.Count(sample, string(c))
		if n > bestCount {
			best = c
			bestCount = n
		}
	}
	return best
}

// Resolve builds the dialect for a read operation. A zero separator means
// auto-detect against the sample line; an explicit separator skips
// detection entirely and the sample is ignored.
func Resolve(separator byte, sample string, candidates []byte, base Dialect) Dialect {
	d := base
	if separator != 0 {
		d.Separator = separator
		return d
	}
	d.Separator = Detect(sample, candidates)
	return d
}
