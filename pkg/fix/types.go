// Package fix models the recursive FIX descriptor and
// parses raw tag=value FIX text into the ordered pairs that feed both the
// SBE encoder and, once nested into a Descriptor, the Merkle leaf
// enumerator.
package fix

// TagValue is a single tag=value pair in declaration order, as produced by
// ParseFIX before any repeating-group nesting is applied.
type TagValue struct {
	Tag   int
	Value []byte
}

// Node is either a scalar leaf value or a repeating group: an ordered
// sequence of sub-descriptors, one per group occurrence.
type Node struct {
	Scalar []byte        // non-nil for a scalar node
	Group  []*Descriptor // non-nil for a group node
}

// IsGroup reports whether the node holds a repeating group rather than a
// scalar value.
func (n Node) IsGroup() bool { return n.Group != nil }

// Descriptor is an ordered mapping from FIX tag to Node. Iteration order is
// insertion order, matching FIX's own requirement that field order within a
// message is meaningful for groups.
type Descriptor struct {
	tags  []int
	nodes map[int]Node
}

// NewDescriptor returns an empty Descriptor.
func NewDescriptor() *Descriptor {
	return &Descriptor{nodes: make(map[int]Node)}
}

// Set inserts or overwrites the node at tag, preserving the original
// position if tag is already present, else appending it.
func (d *Descriptor) Set(tag int, n Node) {
	if _, ok := d.nodes[tag]; !ok {
		d.tags = append(d.tags, tag)
	}
	d.nodes[tag] = n
}

// SetScalar is a convenience wrapper around Set for scalar string values.
func (d *Descriptor) SetScalar(tag int, value []byte) {
	d.Set(tag, Node{Scalar: value})
}

// SetGroup is a convenience wrapper around Set for repeating groups.
func (d *Descriptor) SetGroup(tag int, entries []*Descriptor) {
	d.Set(tag, Node{Group: entries})
}

// Get returns the node at tag and whether it was present.
func (d *Descriptor) Get(tag int) (Node, bool) {
	n, ok := d.nodes[tag]
	return n, ok
}

// Tags returns the tags in declaration order.
func (d *Descriptor) Tags() []int {
	out := make([]int, len(d.tags))
	copy(out, d.tags)
	return out
}

// Len returns the number of top-level tags in the descriptor.
func (d *Descriptor) Len() int { return len(d.tags) }
