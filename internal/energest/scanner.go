package energest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"energest-report/internal/logging"
)

var (
	// ErrMalformedConsumption is returned when a consumption marker lacks a byte count or source.
	ErrMalformedConsumption = errors.New("malformed consumption line")
)

// Counters holds everything a single scan accumulates.
type Counters struct {
	Ticks          map[int]map[string]int
	TotalTicks     map[int]int
	TelemetryBytes int
	BytesPerSource map[int]int
	TxBytes        map[int]int
	TxOps          map[int]int
	RxBytes        map[int]int
	RxOps          map[int]int
	Appended       int
	// ZeroRef is the timestamp, in seconds, of the join marker. Zero if never seen.
	ZeroRef float64
	// SimTime is the elapsed simulated time of the last accounted state line.
	SimTime      float64
	Halted       bool
	SkippedLines int
}

func newCounters() *Counters {
	return &Counters{
		Ticks:          make(map[int]map[string]int),
		TotalTicks:     make(map[int]int),
		BytesPerSource: make(map[int]int),
		TxBytes:        make(map[int]int),
		TxOps:          make(map[int]int),
		RxBytes:        make(map[int]int),
		RxOps:          make(map[int]int),
	}
}

// Joined reports whether the zero-reference marker was found.
func (c *Counters) Joined() bool { return c.ZeroRef > 0 }

func (c *Counters) ensureNode(node int) {
	if _, ok := c.Ticks[node]; ok {
		return
	}
	c.Ticks[node] = make(map[string]int, len(States))
	for _, s := range States {
		c.Ticks[node][s] = 0
	}
	c.TotalTicks[node] = 0
}

// Observer receives scan activity. Implementations must be cheap; they run per line.
type Observer interface {
	ObserveLine(kind Kind)
	ObserveSkip()
}

type nopObserver struct{}

func (nopObserver) ObserveLine(Kind) {}
func (nopObserver) ObserveSkip()     {}

// Scan reads r line by line and accumulates counters. name only labels log output.
// Per-line failures are logged and skipped; a malformed consumption marker aborts the scan.
func (a *Analyzer) Scan(ctx context.Context, name string, r io.Reader) (*Counters, error) {
	log := logging.FromContext(ctx)
	obs := a.observer()
	cutoff := a.cutoff()
	variant := a.variant()
	classifier := a.classifier()

	c := newCounters()
	rd := bufio.NewReader(r)

	lineNo := 0
	for {
		raw, readErr := rd.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("%s: read: %w", name, readErr)
		}
		if raw == "" && readErr == io.EOF {
			break
		}
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := classifier.Classify(strings.TrimRight(raw, "\r\n"))
		obs.ObserveLine(line.Kind)

		if !c.Joined() {
			if line.Kind != KindJoinMarker {
				continue
			}
			if ts, err := line.Timestamp(); err == nil {
				c.ZeroRef = ts
			}
			continue
		}

		if ts, err := line.Timestamp(); err == nil && ts-c.ZeroRef > cutoff {
			c.Halted = true
			break
		}

		var err error
		switch line.Kind {
		case KindConsumption:
			if err := c.consume(line, variant); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
			}
			continue
		case KindTxOp, KindRxOp, KindAppend:
			if !variant.TracksOps() {
				continue
			}
			err = c.operation(classifier, line)
		case KindEnergest:
			err = c.energest(line)
		default:
			continue
		}
		if err != nil {
			c.SkippedLines++
			obs.ObserveSkip()
			log.Warn("failed to process line", "file", name, "line", lineNo, "text", line.Raw, "err", err)
		}
	}
	if !c.Joined() {
		log.Warn("zero-reference marker not found", "file", name)
	}
	return c, nil
}

func (c *Counters) consume(l Line, variant Variant) error {
	m := reConsumedBytes.FindStringSubmatch(l.Raw)
	if m == nil {
		return fmt.Errorf("%w: no byte count", ErrMalformedConsumption)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedConsumption, err)
	}
	c.TelemetryBytes += n
	if !variant.TracksSources() {
		return nil
	}

	src := reTelemetrySource.FindStringSubmatch(l.Raw)
	if src == nil || src[1] == "" {
		return fmt.Errorf("%w: no telemetry source", ErrMalformedConsumption)
	}
	// Only the first character names the source node.
	node, err := strconv.Atoi(src[1][:1])
	if err != nil {
		return fmt.Errorf("%w: source node: %v", ErrMalformedConsumption, err)
	}
	c.BytesPerSource[node] += n
	return nil
}

func (c *Counters) operation(classifier *Classifier, l Line) error {
	node, n, err := classifier.op(l)
	if err != nil {
		return err
	}
	switch l.Kind {
	case KindTxOp:
		c.TxBytes[node] += n
		c.TxOps[node]++
	case KindRxOp:
		c.RxBytes[node] += n
		c.RxOps[node]++
	case KindAppend:
		c.Appended++
	}
	return nil
}

// energest accounts one Energest line. Field positions are fixed by the firmware format:
//
//	MM:SS.sss ID:<n> [INFO: Energest ] Radio Rx : <ticks>/ <period> (...)
//	MM:SS.sss ID:<n> [INFO: Energest ] Total time : <ticks>
func (c *Counters) energest(l Line) error {
	f := l.Fields
	if len(f) < 2 {
		return nil
	}
	id := strings.Split(f[1], ":")
	if len(id) < 2 {
		return nil
	}
	node, err := strconv.Atoi(id[1])
	if err != nil {
		return nil
	}
	c.ensureNode(node)

	const stateIdx = 5
	if len(f) <= stateIdx {
		return fmt.Errorf("missing state field")
	}
	state := f[stateIdx]
	tickIdx := stateIdx + 2
	if !isState(state) {
		if len(f) <= stateIdx+1 {
			return fmt.Errorf("missing state field")
		}
		state = f[stateIdx] + " " + f[stateIdx+1]
		tickIdx++
		if !isState(state) {
			if state != TotalTimeState {
				return nil
			}
			if len(f) <= tickIdx {
				return fmt.Errorf("missing total time ticks")
			}
			n, err := strconv.Atoi(f[tickIdx])
			if err != nil {
				return fmt.Errorf("total time ticks: %w", err)
			}
			c.TotalTicks[node] += n
			return nil
		}
	}

	if len(f) <= tickIdx {
		return fmt.Errorf("missing %s ticks", state)
	}
	tok := f[tickIdx]
	n, err := strconv.Atoi(tok[:len(tok)-1])
	if err != nil {
		return fmt.Errorf("%s ticks: %w", state, err)
	}
	c.Ticks[node][state] += n

	ts, err := ParseTimestamp(f[0])
	if err != nil {
		return err
	}
	c.SimTime = ts - c.ZeroRef
	return nil
}
