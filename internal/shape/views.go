package shape

import (
	"fmt"
	"sort"

	"energest-report/internal/energest"
)

// DefaultLabels names the monitoring strategy behind each experiment type tag.
var DefaultLabels = map[string]string{
	"am":  "Active Monitoring",
	"int": "In-Band Network",
	"pb":  "Piggybacking",
}

// Label returns the display name of typ, falling back to the tag itself.
func Label(labels map[string]string, typ string) string {
	if l, ok := labels[typ]; ok {
		return l
	}
	if l, ok := DefaultLabels[typ]; ok {
		return l
	}
	return typ
}

type viewFunc func([]energest.ExperimentRecord) (any, error)

var views = map[string]viewFunc{
	"total-energy-vs-hops": func(r []energest.ExperimentRecord) (any, error) { return TotalEnergyByType(r), nil },
	"energy-vs-hops-by-bytes": func(r []energest.ExperimentRecord) (any, error) {
		return EnergyVsHopsByBytes(r), nil
	},
	"energy-vs-nodes-by-type": func(r []energest.ExperimentRecord) (any, error) {
		return EnergyVsNodesByType(r), nil
	},
	"energy-per-hop":     func(r []energest.ExperimentRecord) (any, error) { return EnergyPerHop(r) },
	"bytes-per-hop":      func(r []energest.ExperimentRecord) (any, error) { return BytesPerHop(r) },
	"energy-per-byte":    func(r []energest.ExperimentRecord) (any, error) { return EnergyPerByte(r) },
	"byte-cost-by-nodes": func(r []energest.ExperimentRecord) (any, error) { return ByteCostByNodes(r) },
}

// Names lists the available views in lexical order.
func Names() []string {
	names := make([]string, 0, len(views))
	for n := range views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build shapes recs into the named view.
func Build(name string, recs []energest.ExperimentRecord) (any, error) {
	fn, ok := views[name]
	if !ok {
		return nil, fmt.Errorf("unknown view %q", name)
	}
	return fn(recs)
}
