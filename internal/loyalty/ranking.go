// Package loyalty implements the percentile-based loyalty tier
// calculation.  The ranking is recomputed from live data on every
// request; no percentile or tier value is cached anywhere.
package loyalty

import (
	"errors"
	"sort"
)

// OrderPointWeight is the fixed score contribution of a single service
// order, independent of its price or quantity.
const OrderPointWeight = 100

// Tier labels derived from the percentile rank.
const (
	TierGold   = "Gold"
	TierSilver = "Silver"
	TierBronze = "Bronze"
)

// ErrClientNotRanked is returned when the target client does not appear
// in the standing set.
var ErrClientNotRanked = errors.New("client not present in ranking set")

// Standing is the typed scoring input for one client.
type Standing struct {
	ClientID   uint64
	Points     int64
	OrderCount int64
}

// Rank is the computed position of one client within the full set.
type Rank struct {
	ClientID   uint64
	Score      int64
	Position   int     // 1-based position after sorting
	Total      int     // number of ranked clients
	Percentile float64 // Position / Total
	Tier       string
	Benefits   []string
}

// Score computes the ranking score: points plus a fixed weight per
// service order.
func Score(points, orderCount int64) int64 {
	return points + OrderPointWeight*orderCount
}

// tierFor maps a percentile onto a tier label.  Boundaries are
// inclusive: exactly 0.20 is still Gold, exactly 0.50 still Silver.
func tierFor(percentile float64) string {
	switch {
	case percentile <= 0.20:
		return TierGold
	case percentile <= 0.50:
		return TierSilver
	default:
		return TierBronze
	}
}

// Benefits returns the fixed benefit list for a tier.  Higher tiers
// include everything below them.
func Benefits(tier string) []string {
	base := []string{"basic support"}
	if tier == TierBronze {
		return base
	}
	silver := append(base, "priority boarding", "extra baggage allowance")
	if tier == TierSilver {
		return silver
	}
	return append(silver, "flight discounts")
}

// Compute ranks the full set of standings and returns the rank of the
// target client.  Clients are ordered by descending score; ties break
// on ascending client ID so the result does not depend on input order.
// ErrClientNotRanked is returned when the target is absent.
func Compute(standings []Standing, targetClientID uint64) (Rank, error) {
	if len(standings) == 0 {
		return Rank{}, ErrClientNotRanked
	}
	ranked := make([]Standing, len(standings))
	copy(ranked, standings)
	sort.Slice(ranked, func(i, j int) bool {
		si := Score(ranked[i].Points, ranked[i].OrderCount)
		sj := Score(ranked[j].Points, ranked[j].OrderCount)
		if si != sj {
			return si > sj
		}
		return ranked[i].ClientID < ranked[j].ClientID
	})
	for i, s := range ranked {
		if s.ClientID != targetClientID {
			continue
		}
		pos := i + 1
		pct := float64(pos) / float64(len(ranked))
		tier := tierFor(pct)
		return Rank{
			ClientID:   s.ClientID,
			Score:      Score(s.Points, s.OrderCount),
			Position:   pos,
			Total:      len(ranked),
			Percentile: pct,
			Tier:       tier,
			Benefits:   Benefits(tier),
		}, nil
	}
	return Rank{}, ErrClientNotRanked
}
