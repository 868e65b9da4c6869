// Package cache memoizes expensive per-user aggregations. Entries
// are invalidated by replay-set version hash and by age; the cache is
// an optimization only and every caller must be able to live without
// it.
package cache

import (
	"fmt"
	"sort"

	"sc2-coach/internal/domain"

	"github.com/cespare/xxhash/v2"
)

// MatchupAll is the key segment used when no matchup filter applies.
const MatchupAll = "all"

// Key builds the composite cache key for one aggregate. An empty
// matchup filter folds to the literal "all" segment so filtered and
// unfiltered results never collide.
func Key(userID string, period domain.Period, matchup string) string {
	return fmt.Sprintf("%s:%s:%s", userID, period, matchupSegment(matchup))
}

func matchupSegment(matchup string) string {
	if matchup == "" {
		return MatchupAll
	}
	return matchup
}

// VersionHash fingerprints a replay ID set. Input order never
// matters, and the set size is encoded alongside the digest so sets
// of different cardinality can never share a hash. The input slice is
// not modified.
func VersionHash(replayIDs []string) string {
	ids := append([]string(nil), replayIDs...)
	sort.Strings(ids)

	h := xxhash.New()
	for _, id := range ids {
		h.WriteString(id)
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%d:%016x", len(ids), h.Sum64())
}
