// Package metrics computes identity and drift measures over profiles.
//
// Every function here is pure: inputs are only read, never retained.
package metrics

import (
	"sort"

	"github.com/starford/onto16/internal/canonical"
	"github.com/starford/onto16/internal/checksum"
	"github.com/starford/onto16/internal/models"
)

// Hash returns the 64-character lowercase hex SHA-256 of the canonical encoding of p.
// It is sensitive to node order and to every field of the profile and its nodes.
func Hash(p models.Profile) string {
	return checksum.Sum(canonical.EncodeProfile(p))
}

// JaccardDistance returns 1 - |A∩B|/|A∪B| over the distinct node ids of a and b.
// Two profiles without nodes are at distance 0.
func JaccardDistance(a, b models.Profile) float64 {
	inter, union := overlap(idSet(a), idSet(b))
	if union == 0 {
		return 0.0
	}
	return 1.0 - float64(inter)/float64(union)
}

// JaccardSimilarity returns 1 - JaccardDistance(a, b).
func JaccardSimilarity(a, b models.Profile) float64 {
	return 1.0 - JaccardDistance(a, b)
}

// Comparison summarises how b differs from a.
type Comparison struct {
	HashA     string   `json:"hash_a"`
	HashB     string   `json:"hash_b"`
	Identical bool     `json:"identical"`
	Distance  float64  `json:"distance"`
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
}

// Compare hashes both profiles and reports the id-set distance along with the
// ids present only in b (Added) and only in a (Removed), each sorted.
func Compare(a, b models.Profile) Comparison {
	setA, setB := idSet(a), idSet(b)
	hashA, hashB := Hash(a), Hash(b)
	return Comparison{
		HashA:     hashA,
		HashB:     hashB,
		Identical: hashA == hashB,
		Distance:  JaccardDistance(a, b),
		Added:     difference(setB, setA),
		Removed:   difference(setA, setB),
	}
}

func idSet(p models.Profile) map[string]struct{} {
	set := make(map[string]struct{}, len(p.Nodes))
	for _, n := range p.Nodes {
		set[n.ID] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) (intersection, union int) {
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		}
	}
	return intersection, len(a) + len(b) - intersection
}

// difference returns the sorted ids in a that are not in b.
func difference(a, b map[string]struct{}) []string {
	out := []string{}
	for id := range a {
		if _, ok := b[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
