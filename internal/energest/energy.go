package energest

import (
	"errors"
	"fmt"
)

// ErrZeroPeriod is returned when a node has no accumulated total time.
var ErrZeroPeriod = errors.New("node has zero total ticks")

// NodeEnergy is the energy accounting of one node over its observed period.
type NodeEnergy struct {
	EnergyMJ      float64 `json:"energy_mj"`
	ChargeMC      float64 `json:"charge_mc"`
	PeriodSeconds float64 `json:"period_seconds"`
}

// ChargeMAh converts the charge to milliampere-hours.
func (e NodeEnergy) ChargeMAh() float64 { return e.ChargeMC / 3600.0 }

// AverageCurrentMA weights each modelled state's tick fraction by its current.
// States outside the model contribute nothing.
func AverageCurrentMA(ticks map[string]int, totalTicks int) (float64, error) {
	if totalTicks == 0 {
		return 0, ErrZeroPeriod
	}
	period := float64(totalTicks)
	avg := 0.0
	for _, s := range States {
		avg += float64(ticks[s]) * CurrentMA[s] / period
	}
	return avg, nil
}

// ComputeNodeEnergy reduces a node's tick counts to charge and energy.
func ComputeNodeEnergy(ticks map[string]int, totalTicks int) (NodeEnergy, error) {
	avg, err := AverageCurrentMA(ticks, totalTicks)
	if err != nil {
		return NodeEnergy{}, err
	}
	period := float64(totalTicks)
	charge := period * avg / RtimerTicksPerSecond
	return NodeEnergy{
		EnergyMJ:      charge * Voltage,
		ChargeMC:      charge,
		PeriodSeconds: period / RtimerTicksPerSecond,
	}, nil
}

// NodeEnergies computes energy for every node seen by a scan.
func (c *Counters) NodeEnergies() (map[int]NodeEnergy, error) {
	out := make(map[int]NodeEnergy, len(c.Ticks))
	for _, node := range sortedKeys(c.Ticks) {
		e, err := ComputeNodeEnergy(c.Ticks[node], c.TotalTicks[node])
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", node, err)
		}
		out[node] = e
	}
	return out, nil
}
