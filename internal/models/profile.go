// Package models defines the node and profile value types.
package models

// Node is a single identified unit of content within a profile.
// Links reference other nodes by ID; they are stored as given and never resolved.
type Node struct {
	ID        string   `json:"id" yaml:"id"`
	Rational  bool     `json:"rational" yaml:"rational"`
	Content   string   `json:"content" yaml:"content"`
	Stability float32  `json:"stability" yaml:"stability"`
	Links     []string `json:"links" yaml:"links"`
}

// Profile is a versioned snapshot of a node collection plus an aggregate energy level.
//
// Profiles are treated as values: every method returns a new Profile and leaves
// the receiver untouched. Version is never incremented here; that is up to the caller
// producing successive snapshots.
type Profile struct {
	Nodes       []Node  `json:"nodes" yaml:"nodes"`
	EnergyState float32 `json:"energy_state" yaml:"energy_state"`
	Version     uint32  `json:"version" yaml:"version"`
}

// NewNode builds a Node from its fields. No validation is performed.
func NewNode(id string, rational bool, content string, stability float32, links []string) Node {
	return Node{
		ID:        id,
		Rational:  rational,
		Content:   content,
		Stability: stability,
		Links:     cloneStrings(links),
	}
}

// NewProfile builds a Profile owning a deep copy of nodes. No validation is performed.
func NewProfile(nodes []Node, energyState float32, version uint32) Profile {
	return Profile{
		Nodes:       cloneNodes(nodes),
		EnergyState: energyState,
		Version:     version,
	}
}

// Clone returns an independent copy of n.
func (n Node) Clone() Node {
	n.Links = cloneStrings(n.Links)
	return n
}

// Clone returns an independent deep copy of p.
func (p Profile) Clone() Profile {
	p.Nodes = cloneNodes(p.Nodes)
	return p
}

// IDs returns node ids in stored order, duplicates included.
func (p Profile) IDs() []string {
	if p.Nodes == nil {
		return nil
	}
	out := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		out = append(out, n.ID)
	}
	return out
}

// Len returns the number of stored nodes.
func (p Profile) Len() int { return len(p.Nodes) }

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
