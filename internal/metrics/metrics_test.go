package metrics

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"testing"

	"github.com/starford/onto16/internal/canonical"
	"github.com/starford/onto16/internal/models"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

func node(id string) models.Node {
	return models.NewNode(id, true, "x", 0.9, nil)
}

func profile(ids ...string) models.Profile {
	nodes := make([]models.Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, node(id))
	}
	return models.NewProfile(nodes, 1.0, 1)
}

// scenarioA is the single-node baseline profile.
func scenarioA() models.Profile {
	return models.NewProfile([]models.Node{
		models.NewNode("n1", true, "x", 0.9, []string{}),
	}, 1.0, 1)
}

func TestHash_Format(t *testing.T) {
	for _, p := range []models.Profile{{}, scenarioA(), profile("a", "b", "c")} {
		if h := Hash(p); !hexHash.MatchString(h) {
			t.Errorf("Hash = %q, want 64 lowercase hex chars", h)
		}
	}
}

func TestHash_Golden(t *testing.T) {
	tests := []struct {
		name string
		p    models.Profile
		want string
	}{
		{"scenario A", scenarioA(), "cf2cab10db818a9de47d0deee2a09774b5eee79284897afcd8b7726b34e922cd"},
		{"empty", models.Profile{}, "ef74a1e03e8b495a84547eb0073ff248ba0f60acc794e806e7e3541cdc600fd2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hash(tt.p); got != tt.want {
				t.Errorf("Hash = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHash_CloneStable(t *testing.T) {
	p := models.NewProfile([]models.Node{
		models.NewNode("n1", true, "x", 0.9, []string{"n2"}),
		models.NewNode("n2", false, "y", 0.1, nil),
	}, 0.85, 2)
	if Hash(p) != Hash(p.Clone()) {
		t.Error("clone changed hash")
	}
}

func TestHash_SensitiveToEveryField(t *testing.T) {
	base := models.NewProfile([]models.Node{
		models.NewNode("n1", true, "x", 0.9, []string{"a", "b"}),
		models.NewNode("n2", false, "y", 0.5, nil),
	}, 1.0, 1)
	baseHash := Hash(base)

	mutate := func(f func(p *models.Profile)) models.Profile {
		c := base.Clone()
		f(&c)
		return c
	}

	tests := map[string]models.Profile{
		"id":           mutate(func(p *models.Profile) { p.Nodes[0].ID = "n9" }),
		"rational":     mutate(func(p *models.Profile) { p.Nodes[0].Rational = false }),
		"content":      mutate(func(p *models.Profile) { p.Nodes[0].Content = "z" }),
		"stability":    mutate(func(p *models.Profile) { p.Nodes[0].Stability = 0.8 }),
		"links order":  mutate(func(p *models.Profile) { p.Nodes[0].Links = []string{"b", "a"} }),
		"links":        mutate(func(p *models.Profile) { p.Nodes[1].Links = []string{"n1"} }),
		"energy_state": mutate(func(p *models.Profile) { p.EnergyState = 0.85 }),
		"version":      mutate(func(p *models.Profile) { p.Version = 2 }),
		"node order":   mutate(func(p *models.Profile) { p.Nodes[0], p.Nodes[1] = p.Nodes[1], p.Nodes[0] }),
	}
	for name, p := range tests {
		if Hash(p) == baseHash {
			t.Errorf("changing %s did not change the hash", name)
		}
	}
}

func TestHash_InvalidUTF8IDsDistinct(t *testing.T) {
	raw := profile("n\xff")
	replaced := profile("n\uFFFD")

	if d := JaccardDistance(raw, replaced); d != 1.0 {
		t.Fatalf("distance = %v, want 1.0", d)
	}
	if Hash(raw) == Hash(replaced) {
		t.Error("ids with different bytes share a hash")
	}
}

func TestHash_RoundTripThroughEncoding(t *testing.T) {
	p := models.NewProfile([]models.Node{
		models.NewNode("n1", true, "x", 0.9, []string{"n2"}),
		models.NewNode("n2", false, "y\n", 0.123, nil),
	}, 0.7225, 2)

	var decoded models.Profile
	if err := json.Unmarshal(canonical.EncodeProfile(p), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if Hash(decoded) != Hash(p) {
		t.Error("re-parsed profile hashes differently")
	}
}

func TestJaccardDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Profile
		want float64
	}{
		{"both empty", models.Profile{}, models.Profile{}, 0.0},
		{"one empty", profile("a"), models.Profile{}, 1.0},
		{"identical", profile("a", "b"), profile("a", "b"), 0.0},
		{"disjoint", profile("a", "b"), profile("c"), 1.0},
		{"half", profile("n1"), profile("n1", "n2"), 0.5},
		{"one shared of three", profile("a", "b"), profile("a", "c"), 1.0 - 1.0/3.0},
		{"duplicates collapse", profile("a", "a", "b"), profile("a", "b", "b"), 0.0},
		{"order ignored", profile("a", "b", "c"), profile("c", "a", "b"), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JaccardDistance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("JaccardDistance = %v, want %v", got, tt.want)
			}
			if back := JaccardDistance(tt.b, tt.a); back != got {
				t.Errorf("not symmetric: %v vs %v", got, back)
			}
			if self := JaccardDistance(tt.a, tt.a); self != 0.0 {
				t.Errorf("JaccardDistance(a, a) = %v, want 0", self)
			}
		})
	}
}

func TestJaccardDistance_IgnoresNonIDFields(t *testing.T) {
	a := models.NewProfile([]models.Node{models.NewNode("n1", true, "x", 0.9, []string{"n2"})}, 1.0, 1)
	b := models.NewProfile([]models.Node{models.NewNode("n1", false, "other", -3, nil)}, 42, 9)
	if d := JaccardDistance(a, b); d != 0.0 {
		t.Errorf("JaccardDistance = %v, want 0", d)
	}
	if Hash(a) == Hash(b) {
		t.Error("different content should hash differently")
	}
}

func TestOrderSwap_HashDiffersDistanceZero(t *testing.T) {
	a := profile("n1", "n2")
	b := models.NewProfile([]models.Node{a.Nodes[1], a.Nodes[0]}, a.EnergyState, a.Version)
	if Hash(a) == Hash(b) {
		t.Error("hash should be order sensitive")
	}
	if d := JaccardDistance(a, b); d != 0.0 {
		t.Errorf("JaccardDistance = %v, want 0", d)
	}
}

func TestScenario_StressAndRecovery(t *testing.T) {
	a := scenarioA()
	b := a.WithOverrides(
		models.WithAppendedNodes(models.NewNode("n2", false, "y", 0.3, nil)),
		models.WithEnergyState(a.EnergyState*0.85),
	)
	if d := JaccardDistance(a, b); d != 0.5 {
		t.Errorf("JaccardDistance(A, B) = %v, want 0.5", d)
	}
	if Hash(a) == Hash(b) {
		t.Error("hash(A) should differ from hash(B)")
	}

	c := b.WithOverrides(models.WithEnergyState(b.EnergyState * 1.1))
	if d := JaccardDistance(b, c); d != 0.0 {
		t.Errorf("JaccardDistance(B, C) = %v, want 0", d)
	}
	if Hash(b) == Hash(c) {
		t.Error("hash(B) should differ from hash(C)")
	}
}

func TestJaccardSimilarity(t *testing.T) {
	if s := JaccardSimilarity(models.Profile{}, models.Profile{}); s != 1.0 {
		t.Errorf("empty similarity = %v, want 1", s)
	}
	if s := JaccardSimilarity(profile("a"), profile("a", "b")); s != 0.5 {
		t.Errorf("similarity = %v, want 0.5", s)
	}
}

func TestCompare(t *testing.T) {
	a := profile("a", "b", "c")
	b := profile("c", "d", "b", "e")

	cmp := Compare(a, b)
	if cmp.Identical {
		t.Error("profiles should not be identical")
	}
	if cmp.HashA != Hash(a) || cmp.HashB != Hash(b) {
		t.Error("comparison hashes mismatch")
	}
	if want := []string{"d", "e"}; !reflect.DeepEqual(cmp.Added, want) {
		t.Errorf("added = %v, want %v", cmp.Added, want)
	}
	if want := []string{"a"}; !reflect.DeepEqual(cmp.Removed, want) {
		t.Errorf("removed = %v, want %v", cmp.Removed, want)
	}
	if want := 1.0 - 2.0/5.0; math.Abs(cmp.Distance-want) > 1e-12 {
		t.Errorf("distance = %v, want %v", cmp.Distance, want)
	}

	same := Compare(a, a.Clone())
	if !same.Identical || same.Distance != 0 || len(same.Added) != 0 || len(same.Removed) != 0 {
		t.Errorf("self comparison = %+v", same)
	}
}
