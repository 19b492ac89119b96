// Energy model constants and experiment variants
package energest

import "fmt"

// Duty-cycle states that carry current in the energy model.
const (
	StateRadioRx = "Radio Rx"
	StateRadioTx = "Radio Tx"
)

// States lists the modelled duty-cycle states in accounting order.
var States = []string{StateRadioRx, StateRadioTx}

// CurrentMA is the current draw of each modelled state in milliamperes.
var CurrentMA = map[string]float64{
	StateRadioRx: 18.8,
	StateRadioTx: 17.4,
}

const (
	// RtimerTicksPerSecond is the simulator rtimer resolution.
	RtimerTicksPerSecond = 1_000_000
	// Voltage assumes 3 volt batteries.
	Voltage = 3.0
)

func isState(s string) bool {
	_, ok := CurrentMA[s]
	return ok
}

// Variant selects which counters a scan extracts and its default cutoff.
type Variant string

const (
	// VariantData tracks energy and aggregate telemetry bytes.
	VariantData Variant = "data"
	// VariantPiggybacking also attributes telemetry bytes to their source node.
	VariantPiggybacking Variant = "piggybacking"
	// VariantFull also tracks transmit/receive operations and appended packets.
	VariantFull Variant = "full"
)

// ParseVariant converts a configuration string into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case VariantData, VariantPiggybacking, VariantFull:
		return v, nil
	case "":
		return VariantFull, nil
	}
	return "", fmt.Errorf("unknown variant %q", s)
}

// DefaultCutoff returns the simulated execution time, in seconds, after which
// a scan stops.
func (v Variant) DefaultCutoff() float64 {
	if v == VariantData {
		return 600
	}
	return 1200
}

// TracksSources reports whether consumed telemetry is attributed per source node.
func (v Variant) TracksSources() bool {
	return v == VariantPiggybacking || v == VariantFull
}

// TracksOps reports whether transmit/receive operations and append events are counted.
func (v Variant) TracksOps() bool {
	return v == VariantFull
}
