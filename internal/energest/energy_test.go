package energest

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func TestComputeNodeEnergyWorkedExample(t *testing.T) {
	ticks := map[string]int{StateRadioRx: 500000, StateRadioTx: 500000}
	avg, err := AverageCurrentMA(ticks, 1000000)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(avg, 18.1) {
		t.Errorf("avg current = %v, want 18.1", avg)
	}
	e, err := ComputeNodeEnergy(ticks, 1000000)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(e.ChargeMC, 18.1) {
		t.Errorf("charge = %v, want 18.1", e.ChargeMC)
	}
	if !approx(e.EnergyMJ, 54.3) {
		t.Errorf("energy = %v, want 54.3", e.EnergyMJ)
	}
	if !approx(e.PeriodSeconds, 1) {
		t.Errorf("period = %v, want 1", e.PeriodSeconds)
	}
	if !approx(e.ChargeMAh(), 18.1/3600) {
		t.Errorf("mAh = %v", e.ChargeMAh())
	}
}

func TestAverageCurrentIsConvexCombination(t *testing.T) {
	lo, hi := CurrentMA[StateRadioTx], CurrentMA[StateRadioRx]
	cases := []struct{ rx, tx int }{
		{1, 1}, {1, 999999}, {999999, 1}, {250000, 750000}, {42, 58},
	}
	for _, c := range cases {
		avg, err := AverageCurrentMA(map[string]int{StateRadioRx: c.rx, StateRadioTx: c.tx}, c.rx+c.tx)
		if err != nil {
			t.Fatal(err)
		}
		if avg < lo-eps || avg > hi+eps {
			t.Errorf("rx=%d tx=%d: avg %v outside [%v, %v]", c.rx, c.tx, avg, lo, hi)
		}
	}
}

func TestAverageCurrentIgnoresUnmodelledStates(t *testing.T) {
	avg, err := AverageCurrentMA(map[string]int{"CPU": 1000000, "LPM": 1000000}, 1000000)
	if err != nil {
		t.Fatal(err)
	}
	if avg != 0 {
		t.Errorf("avg = %v, want 0", avg)
	}
}

func TestComputeNodeEnergyZeroPeriod(t *testing.T) {
	_, err := ComputeNodeEnergy(map[string]int{StateRadioRx: 10}, 0)
	if !errors.Is(err, ErrZeroPeriod) {
		t.Fatalf("expected ErrZeroPeriod, got %v", err)
	}
}

func TestNodeEnergiesFailsOnMissingTotal(t *testing.T) {
	c := newCounters()
	c.ensureNode(2)
	c.Ticks[2][StateRadioRx] = 10
	_, err := c.NodeEnergies()
	if !errors.Is(err, ErrZeroPeriod) {
		t.Fatalf("expected ErrZeroPeriod, got %v", err)
	}
}
