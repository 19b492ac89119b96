// Package shape reshapes experiment records into the series each comparison view plots.
//
// Every function is pure and deterministic. Groups appear in the order their first
// record appears in the input.
package shape

import (
	"fmt"
	"sort"
	"strconv"

	"energest-report/internal/energest"
)

// VisualOrder returns the plotting order of node ids for a topology with hops relays:
// relays are renumbered ahead of node 3, which is always placed last.
func VisualOrder(hops int) []int {
	order := make([]int, 0, hops+2)
	for i := 0; i <= hops; i++ {
		if i >= 2 {
			order = append(order, i+2)
		} else {
			order = append(order, i+1)
		}
	}
	return append(order, 3)
}

// SortNodes orders ids by their position in VisualOrder(hops).
func SortNodes(ids []int, hops int) ([]int, error) {
	pos := make(map[int]int)
	for i, id := range VisualOrder(hops) {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	out := make([]int, len(ids))
	copy(out, ids)
	for _, id := range out {
		if _, ok := pos[id]; !ok {
			return nil, fmt.Errorf("node %d is not in the visual order for %d hops", id, hops)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return pos[out[i]] < pos[out[j]] })
	return out, nil
}

// Series is a labelled sequence of values.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func (s *Series) add(label string, v float64) {
	s.Labels = append(s.Labels, label)
	s.Values = append(s.Values, v)
}

// Group is a named set of series, keyed by the view's second dimension.
type Group struct {
	Key    string  `json:"key"`
	Series []Named `json:"series"`
	index  map[string]int
}

// Named is a series with its key.
type Named struct {
	Key string `json:"key"`
	Series
}

func (g *Group) series(key string) *Series {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	i, ok := g.index[key]
	if !ok {
		i = len(g.Series)
		g.index[key] = i
		g.Series = append(g.Series, Named{Key: key})
	}
	return &g.Series[i].Series
}

// Lookup returns the series stored under key.
func (g Group) Lookup(key string) (Series, bool) {
	for _, n := range g.Series {
		if n.Key == key {
			return n.Series, true
		}
	}
	return Series{}, false
}

type groups struct {
	list  []*Group
	index map[string]*Group
}

func (gs *groups) get(key string) *Group {
	if gs.index == nil {
		gs.index = make(map[string]*Group)
	}
	g, ok := gs.index[key]
	if !ok {
		g = &Group{Key: key}
		gs.index[key] = g
		gs.list = append(gs.list, g)
	}
	return g
}

func (gs *groups) result() []Group {
	out := make([]Group, len(gs.list))
	for i, g := range gs.list {
		out[i] = *g
	}
	return out
}

// TotalEnergyByType collects, per experiment type, the hop count and total energy of each record.
func TotalEnergyByType(recs []energest.ExperimentRecord) Group {
	g := Group{Key: "total_energy_vs_hops"}
	for _, r := range recs {
		g.series(r.Type).add(strconv.Itoa(r.Hops), r.TotalEnergyMJ)
	}
	return g
}

// EnergyVsHopsByBytes groups records by type, then by payload size, with hop labels.
func EnergyVsHopsByBytes(recs []energest.ExperimentRecord) []Group {
	var gs groups
	for _, r := range recs {
		gs.get(r.Type).series(strconv.Itoa(r.Bytes)).add(strconv.Itoa(r.Hops), r.TotalEnergyMJ)
	}
	return gs.result()
}

// EnergyVsNodesByType groups records by payload size, then by type, with node-count labels.
func EnergyVsNodesByType(recs []energest.ExperimentRecord) []Group {
	var gs groups
	for _, r := range recs {
		gs.get(strconv.Itoa(r.Bytes)).series(r.Type).add(strconv.Itoa(r.NumberNodes), r.TotalEnergyMJ)
	}
	return gs.result()
}

// Topology identifies a hops/payload combination.
type Topology struct {
	Key   string  `json:"key"`
	Hops  int     `json:"hops"`
	Bytes int     `json:"bytes"`
	Nodes int     `json:"nodes"`
	Types []Named `json:"types"`
	index map[string]int
}

func topologyKey(r energest.ExperimentRecord) string {
	return strconv.Itoa(r.Hops) + "_" + strconv.Itoa(r.Bytes)
}

type topologies struct {
	list  []*Topology
	index map[string]*Topology
}

func (ts *topologies) get(r energest.ExperimentRecord) *Topology {
	if ts.index == nil {
		ts.index = make(map[string]*Topology)
	}
	key := topologyKey(r)
	t, ok := ts.index[key]
	if !ok {
		t = &Topology{Key: key, Hops: r.Hops, Bytes: r.Bytes, index: make(map[string]int)}
		ts.index[key] = t
		ts.list = append(ts.list, t)
	}
	t.Nodes = r.NumberNodes
	return t
}

func (ts *topologies) result() []Topology {
	out := make([]Topology, len(ts.list))
	for i, t := range ts.list {
		out[i] = *t
	}
	return out
}

// Lookup returns the per-type series of a topology.
func (t Topology) Lookup(typ string) (Series, bool) {
	for _, n := range t.Types {
		if n.Key == typ {
			return n.Series, true
		}
	}
	return Series{}, false
}

// perNode fills the topology's series for r's type the first time the type is seen.
func (t *Topology) perNode(typ string, values map[int]float64) error {
	if _, ok := t.index[typ]; ok {
		return nil
	}
	ids := make([]int, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	ordered, err := SortNodes(ids, t.Hops)
	if err != nil {
		return fmt.Errorf("topology %s type %s: %w", t.Key, typ, err)
	}
	var s Series
	for _, id := range ordered {
		s.add(strconv.Itoa(id), values[id])
	}
	t.index[typ] = len(t.Types)
	t.Types = append(t.Types, Named{Key: typ, Series: s})
	return nil
}

// EnergyPerHop lists, per topology and type, each node's energy in visual order.
func EnergyPerHop(recs []energest.ExperimentRecord) ([]Topology, error) {
	var ts topologies
	for _, r := range recs {
		values := make(map[int]float64, len(r.Nodes))
		for id, e := range r.Nodes {
			values[id] = e.EnergyMJ
		}
		if err := ts.get(r).perNode(r.Type, values); err != nil {
			return nil, err
		}
	}
	return ts.result(), nil
}

// BytesPerHop lists, per topology and type, the telemetry bytes each node sourced.
func BytesPerHop(recs []energest.ExperimentRecord) ([]Topology, error) {
	var ts topologies
	for _, r := range recs {
		values := make(map[int]float64, len(r.BytesPerNode))
		for id, n := range r.BytesPerNode {
			values[id] = float64(n)
		}
		if err := ts.get(r).perNode(r.Type, values); err != nil {
			return nil, err
		}
	}
	return ts.result(), nil
}

// EnergyPerByte maps, per topology, each type to its energy per telemetry byte.
// A later record of the same type replaces an earlier one.
func EnergyPerByte(recs []energest.ExperimentRecord) ([]Topology, error) {
	var ts topologies
	for _, r := range recs {
		cost, err := r.EnergyPerByte()
		if err != nil {
			return nil, err
		}
		t := ts.get(r)
		if i, ok := t.index[r.Type]; ok {
			t.Types[i].Series = Series{Labels: []string{r.Type}, Values: []float64{cost}}
			continue
		}
		t.index[r.Type] = len(t.Types)
		t.Types = append(t.Types, Named{Key: r.Type, Series: Series{Labels: []string{r.Type}, Values: []float64{cost}}})
	}
	return ts.result(), nil
}

// ByteCost is the energy-per-byte comparison for one payload size.
type ByteCost struct {
	Bytes string `json:"bytes"`
	// NodeLabels are the distinct "N Nodes" labels in first-seen order.
	NodeLabels []string `json:"node_labels"`
	// Measurements holds one series per type, ordered by ascending mean cost.
	Measurements []Named `json:"measurements"`
}

// ByteCostByNodes groups energy-per-byte measurements by payload size and type.
func ByteCostByNodes(recs []energest.ExperimentRecord) ([]ByteCost, error) {
	type acc struct {
		cost   ByteCost
		seen   map[string]bool
		byType Group
	}
	var order []*acc
	index := make(map[string]*acc)
	for _, r := range recs {
		key := strconv.Itoa(r.Bytes)
		a, ok := index[key]
		if !ok {
			a = &acc{cost: ByteCost{Bytes: key}, seen: make(map[string]bool)}
			index[key] = a
			order = append(order, a)
		}
		nodes := strconv.Itoa(r.NumberNodes)
		if !a.seen[nodes] {
			a.seen[nodes] = true
			a.cost.NodeLabels = append(a.cost.NodeLabels, nodes+" Nodes")
		}
		cost, err := r.EnergyPerByte()
		if err != nil {
			return nil, err
		}
		a.byType.series(r.Type).add(nodes+" Nodes", cost)
	}

	out := make([]ByteCost, 0, len(order))
	for _, a := range order {
		ms := append([]Named(nil), a.byType.Series...)
		sort.SliceStable(ms, func(i, j int) bool { return mean(ms[i].Values) < mean(ms[j].Values) })
		a.cost.Measurements = ms
		out = append(out, a.cost)
	}
	return out, nil
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
