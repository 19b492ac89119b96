package energest

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrBadFilename is returned when a log file name does not follow type_hops_x_bytes_...
var ErrBadFilename = errors.New("bad experiment filename")

// Metadata is derived from a log file name.
type Metadata struct {
	Type        string `json:"type"`
	Hops        int    `json:"hops"`
	Bytes       int    `json:"bytes"`
	NumberNodes int    `json:"number_nodes"`
}

// ParseFilename extracts experiment metadata from an underscore-delimited name,
// e.g. "int_2_x_128_run1.log".
func ParseFilename(name string) (Metadata, error) {
	fields := strings.Split(name, "_")
	if len(fields) < 4 {
		return Metadata{}, fmt.Errorf("%w: %q has %d fields", ErrBadFilename, name, len(fields))
	}
	hops, err := strconv.Atoi(fields[1])
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %q hops: %v", ErrBadFilename, name, err)
	}
	bytes, err := strconv.Atoi(fields[3])
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %q bytes: %v", ErrBadFilename, name, err)
	}
	return Metadata{
		Type:        fields[0],
		Hops:        hops,
		Bytes:       bytes,
		NumberNodes: hops + 2,
	}, nil
}

// ExperimentRecord is the per-file result of an analysis. It is not modified after Build.
type ExperimentRecord struct {
	RunID string `json:"run_id"`
	File  string `json:"file"`
	Metadata
	Variant        Variant            `json:"variant"`
	Nodes          map[int]NodeEnergy `json:"nodes"`
	TotalEnergyMJ  float64            `json:"total_energy_mj"`
	SimTime        float64            `json:"sim_time_s"`
	TelemetryBytes int                `json:"telemetry_bytes"`
	BytesPerNode   map[int]int        `json:"bytes_per_node,omitempty"`
	TxBytes        map[int]int        `json:"tx_bytes,omitempty"`
	TxOps          map[int]int        `json:"tx_ops,omitempty"`
	RxBytes        map[int]int        `json:"rx_bytes,omitempty"`
	RxOps          map[int]int        `json:"rx_ops,omitempty"`
	Appended       int                `json:"appended_packets"`
	SkippedLines   int                `json:"skipped_lines"`
}

// BuildRecord combines file metadata and scan counters into a record.
// It fails when a scanned node has no total time.
func BuildRecord(meta Metadata, c *Counters, variant Variant) (ExperimentRecord, error) {
	energies, err := c.NodeEnergies()
	if err != nil {
		return ExperimentRecord{}, err
	}

	rec := ExperimentRecord{
		Metadata:       meta,
		Variant:        variant,
		Nodes:          make(map[int]NodeEnergy, meta.NumberNodes),
		SimTime:        c.SimTime,
		TelemetryBytes: c.TelemetryBytes,
		Appended:       c.Appended,
		SkippedLines:   c.SkippedLines,
	}
	for i := 1; i <= meta.NumberNodes; i++ {
		rec.Nodes[i] = NodeEnergy{}
	}
	for _, node := range sortedKeys(energies) {
		rec.Nodes[node] = energies[node]
		rec.TotalEnergyMJ += energies[node].EnergyMJ
	}

	if variant.TracksSources() {
		rec.BytesPerNode = make(map[int]int, meta.NumberNodes)
		for node, n := range c.BytesPerSource {
			rec.BytesPerNode[node] = n
		}
		// The sink consumes telemetry, it never sources any.
		rec.BytesPerNode[1] = 0
		for i := 1; i < meta.NumberNodes; i++ {
			if _, ok := rec.BytesPerNode[i]; !ok {
				rec.BytesPerNode[i] = 0
			}
		}
	}
	if variant.TracksOps() {
		rec.TxBytes = copyCounts(c.TxBytes)
		rec.TxOps = copyCounts(c.TxOps)
		rec.RxBytes = copyCounts(c.RxBytes)
		rec.RxOps = copyCounts(c.RxOps)
	}
	return rec, nil
}

// NodeIDs returns the record's node ids in ascending order.
func (r ExperimentRecord) NodeIDs() []int { return sortedKeys(r.Nodes) }

// EnergyPerByte is the total energy spent per consumed telemetry byte.
func (r ExperimentRecord) EnergyPerByte() (float64, error) {
	if r.TelemetryBytes == 0 {
		return 0, fmt.Errorf("%s: no telemetry bytes consumed", r.File)
	}
	return r.TotalEnergyMJ / float64(r.TelemetryBytes), nil
}

func copyCounts(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
