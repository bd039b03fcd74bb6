package models

// Override replaces one field of a profile copy. See Profile.WithOverrides.
type Override func(*Profile)

// WithNodes replaces the node sequence with a copy of nodes.
func WithNodes(nodes []Node) Override {
	return func(p *Profile) {
		p.Nodes = cloneNodes(nodes)
	}
}

// WithAppendedNodes appends copies of nodes after the existing ones.
func WithAppendedNodes(nodes ...Node) Override {
	return func(p *Profile) {
		for _, n := range nodes {
			p.Nodes = append(p.Nodes, n.Clone())
		}
	}
}

// WithEnergyState replaces the energy level.
func WithEnergyState(energy float32) Override {
	return func(p *Profile) {
		p.EnergyState = energy
	}
}

// WithVersion replaces the version.
func WithVersion(version uint32) Override {
	return func(p *Profile) {
		p.Version = version
	}
}

// WithOverrides returns a deep copy of p with the given overrides applied in order.
// Fields not named by an override keep the receiver's values.
func (p Profile) WithOverrides(opts ...Override) Profile {
	out := p.Clone()
	for _, opt := range opts {
		opt(&out)
	}
	return out
}
