package sim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PhyloNode is one node of the bifurcating time tree, stored in the
// Phylogeny's arena and referenced by index. Tips carry Left/Right = -1.
//
// Nodes carry absolute times; a branch length is the difference between a
// node's time and its parent's. Keeping times absolute makes pruning a pure
// splice: collapsing a unary node cannot disturb path lengths.
type PhyloNode struct {
	Label int     // individual ID: the infectee for tips, the infector for internals
	Time  float64 // absolute time: transmission time for internals, removal time for tips
	Left  int     // arena index, -1 for tips
	Right int     // arena index, -1 for tips
}

// IsTip reports whether the node is a terminal observation.
func (n *PhyloNode) IsTip() bool {
	return n.Left < 0 && n.Right < 0
}

// Phylogeny is a rooted strictly-bifurcating time tree over an outbreak:
// one tip per infected individual, one internal node per transmission
// event. Immutable once built; Prune returns a new tree.
type Phylogeny struct {
	Nodes []PhyloNode
	Root  int
}

// transmissionEvent is one offspring of an individual, used while building.
type transmissionEvent struct {
	infectee int
	time     float64
}

// BuildPhylogeny converts a completed registry into the pathogen phylogeny.
//
// Unlike the transmission tree, where an infector is a single node with one
// child per infectee, the phylogeny threads each infector's own lineage
// through a chain of internal nodes, one per transmission event in
// chronological order. Each internal node branches off the infectee's
// subtree and continues the chain toward the infector's next event or,
// finally, its own tip at removal time. A genealogy of N individuals
// therefore has exactly N tips and N-1 internal nodes.
//
// The registry must contain a single index case (one tracked root lineage).
func BuildPhylogeny(reg *Registry) (*Phylogeny, error) {
	return buildPhylogeny(reg, nil)
}

// BuildRestrictedPhylogeny builds the phylogeny of the sub-outbreak induced
// by keep. The kept set must be "downward-closed": it contains the index
// case and, for every kept individual, its infector. Transmission events to
// excluded individuals simply never appear on their infector's lineage.
func BuildRestrictedPhylogeny(reg *Registry, keep *SampleSet) (*Phylogeny, error) {
	if keep == nil {
		return buildPhylogeny(reg, nil)
	}
	kept := keep.Contains
	return buildPhylogeny(reg, kept)
}

func buildPhylogeny(reg *Registry, kept func(int) bool) (*Phylogeny, error) {
	if err := ValidateTransmissionData(reg); err != nil {
		return nil, err
	}
	include := func(id int) bool { return kept == nil || kept(id) }

	// Group offspring events by infector, chronological per lineage.
	offspring := make(map[int][]transmissionEvent)
	root := -1
	for _, ind := range reg.All() {
		if ind.InfectorID == NoInfector {
			if !include(ind.ID) {
				return nil, fmt.Errorf("%w: restricted set excludes the index case", ErrInconsistentTransmissionData)
			}
			if root != -1 {
				return nil, fmt.Errorf("%w: phylogeny requires a single index case, found several", ErrInconsistentTransmissionData)
			}
			root = ind.ID
			continue
		}
		if !include(ind.ID) {
			continue
		}
		if !include(ind.InfectorID) {
			return nil, fmt.Errorf("%w: restricted set keeps %d but not its infector %d",
				ErrInconsistentTransmissionData, ind.ID, ind.InfectorID)
		}
		offspring[ind.InfectorID] = append(offspring[ind.InfectorID], transmissionEvent{
			infectee: ind.ID,
			time:     ind.InfectionTime,
		})
	}
	for _, evs := range offspring {
		sort.Slice(evs, func(i, j int) bool {
			if evs[i].time != evs[j].time {
				return evs[i].time < evs[j].time
			}
			return evs[i].infectee < evs[j].infectee
		})
	}

	b := &phyloBuilder{reg: reg, offspring: offspring}
	rootIdx := b.lineage(root, 0)
	return &Phylogeny{Nodes: b.nodes, Root: rootIdx}, nil
}

type phyloBuilder struct {
	reg       *Registry
	offspring map[int][]transmissionEvent
	nodes     []PhyloNode
}

// lineage builds individual id's lineage segment starting at its i-th
// remaining transmission event and returns the arena index of the segment's
// top node.
func (b *phyloBuilder) lineage(id, i int) int {
	evs := b.offspring[id]
	if i == len(evs) {
		return b.add(PhyloNode{Label: id, Time: b.tipTime(id), Left: -1, Right: -1})
	}
	ev := evs[i]
	left := b.lineage(ev.infectee, 0)
	right := b.lineage(id, i+1)
	return b.add(PhyloNode{Label: id, Time: ev.time, Left: left, Right: right})
}

func (b *phyloBuilder) add(n PhyloNode) int {
	b.nodes = append(b.nodes, n)
	return len(b.nodes) - 1
}

// tipTime is the individual's terminal observation time. Removal can never
// precede the last transmission in a well-formed registry; the max guard
// only protects against corrupted input.
func (b *phyloBuilder) tipTime(id int) float64 {
	t := b.reg.Get(id).RemovalTime
	if evs := b.offspring[id]; len(evs) > 0 {
		if last := evs[len(evs)-1].time; last > t {
			t = last
		}
	}
	return t
}

// TipCount returns the number of tips.
func (p *Phylogeny) TipCount() int {
	n := 0
	for i := range p.Nodes {
		if p.Nodes[i].IsTip() {
			n++
		}
	}
	return n
}

// InternalCount returns the number of internal nodes.
func (p *Phylogeny) InternalCount() int {
	return len(p.Nodes) - p.TipCount()
}

// TipTimes returns the absolute times of all tips, sorted ascending. This
// is the phylogenetic view's event list for time-series aggregation.
func (p *Phylogeny) TipTimes() []float64 {
	var times []float64
	for i := range p.Nodes {
		if p.Nodes[i].IsTip() {
			times = append(times, p.Nodes[i].Time)
		}
	}
	sort.Float64s(times)
	return times
}

// Prune returns a new phylogeny restricted to the tips whose labels keep
// reports, collapsing any internal node left with a single child. Absolute
// node times are untouched, so total branch length along every surviving
// lineage is preserved: the collapsed segment's length folds into the
// child's branch.
//
// Pruning to a downward-closed individual set yields the same tree as
// BuildRestrictedPhylogeny on that set.
func (p *Phylogeny) Prune(keep *SampleSet) (*Phylogeny, error) {
	out := &Phylogeny{}
	root := out.copyPruned(p, p.Root, keep)
	if root < 0 {
		return nil, fmt.Errorf("%w: pruning removed every tip", ErrInvalidParameter)
	}
	out.Root = root
	return out, nil
}

// copyPruned copies the surviving part of src's subtree at idx into p's
// arena, returning the new index or -1 if nothing survives.
func (p *Phylogeny) copyPruned(src *Phylogeny, idx int, keep *SampleSet) int {
	n := src.Nodes[idx]
	if n.IsTip() {
		if !keep.Contains(n.Label) {
			return -1
		}
		p.Nodes = append(p.Nodes, n)
		return len(p.Nodes) - 1
	}
	left := p.copyPruned(src, n.Left, keep)
	right := p.copyPruned(src, n.Right, keep)
	switch {
	case left < 0 && right < 0:
		return -1
	case left < 0:
		return right
	case right < 0:
		return left
	}
	p.Nodes = append(p.Nodes, PhyloNode{Label: n.Label, Time: n.Time, Left: left, Right: right})
	return len(p.Nodes) - 1
}

// Newick serializes the tree in Newick format with branch lengths, tips
// labeled by individual ID and internal nodes by infector ID. The root
// carries no branch length.
func (p *Phylogeny) Newick() string {
	var sb strings.Builder
	p.writeNewick(&sb, p.Root, -1)
	sb.WriteByte(';')
	return sb.String()
}

func (p *Phylogeny) writeNewick(sb *strings.Builder, idx, parent int) {
	n := &p.Nodes[idx]
	if !n.IsTip() {
		sb.WriteByte('(')
		p.writeNewick(sb, n.Left, idx)
		sb.WriteByte(',')
		p.writeNewick(sb, n.Right, idx)
		sb.WriteByte(')')
	}
	sb.WriteString(strconv.Itoa(n.Label))
	if parent >= 0 {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(n.Time-p.Nodes[parent].Time, 'f', 6, 64))
	}
}
