package energest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind tags a classified log line.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindJoinMarker
	KindConsumption
	KindTxOp
	KindRxOp
	KindAppend
	KindEnergest
)

var kindNames = map[Kind]string{
	KindUnrecognized: "unrecognized",
	KindJoinMarker:   "join",
	KindConsumption:  "consumption",
	KindTxOp:         "tx",
	KindRxOp:         "rx",
	KindAppend:       "append",
	KindEnergest:     "energest",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Literal markers emitted by the simulated firmware.
const (
	JoinMarker          = "ID:3\t### Joined the network ###"
	EnergestMarker      = "INFO: Energest"
	PeriodSummaryMarker = "Period summary"
	TotalTimeState      = "Total time"
)

var (
	reConsumption     = regexp.MustCompile(`ID:1(.*)EXPERIMENT: Consumed`)
	reConsumedBytes   = regexp.MustCompile(regexp.QuoteMeta("Consumed ") + `(.*?)` + regexp.QuoteMeta(" Bytes"))
	reTelemetrySource = regexp.MustCompile(regexp.QuoteMeta("Bytes of telemetry ") + `(.*)`)
)

// Default operation patterns for the full variant.
const (
	DefaultTxPattern     = `ID:(\d+)\s.*EXPERIMENT: Sent (\d+) Bytes`
	DefaultRxPattern     = `ID:(\d+)\s.*EXPERIMENT: Received (\d+) Bytes`
	DefaultAppendPattern = `ID:(\d+)\s.*EXPERIMENT: Appended telemetry`
)

// Line is a raw log line tagged with its kind.
type Line struct {
	Kind   Kind
	Raw    string
	Fields []string
}

// Timestamp parses the leading field as an MM:SS.sss timestamp.
func (l Line) Timestamp() (float64, error) {
	if len(l.Fields) == 0 {
		return 0, fmt.Errorf("empty line")
	}
	return ParseTimestamp(l.Fields[0])
}

// Classifier tags log lines. The operation patterns may be overridden by configuration.
type Classifier struct {
	tx     *regexp.Regexp
	rx     *regexp.Regexp
	append *regexp.Regexp
}

// Patterns overrides the operation regexes of a Classifier. Empty fields keep defaults.
// Tx and Rx need two capture groups (node, bytes); Append needs one (node).
type Patterns struct {
	Tx     string
	Rx     string
	Append string
}

// NewClassifier compiles a Classifier from p.
func NewClassifier(p Patterns) (*Classifier, error) {
	c := &Classifier{}
	var err error
	if c.tx, err = compilePattern("tx", p.Tx, DefaultTxPattern, 2); err != nil {
		return nil, err
	}
	if c.rx, err = compilePattern("rx", p.Rx, DefaultRxPattern, 2); err != nil {
		return nil, err
	}
	if c.append, err = compilePattern("append", p.Append, DefaultAppendPattern, 1); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultClassifier returns a Classifier using the built-in operation patterns.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(Patterns{})
	if err != nil {
		panic(err)
	}
	return c
}

func compilePattern(name, expr, fallback string, groups int) (*regexp.Regexp, error) {
	if expr == "" {
		expr = fallback
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%s pattern: %w", name, err)
	}
	if re.NumSubexp() < groups {
		return nil, fmt.Errorf("%s pattern %q: need %d capture groups, have %d", name, expr, groups, re.NumSubexp())
	}
	return re, nil
}

// Classify tags raw. Order matters: the first matching kind wins.
func (c *Classifier) Classify(raw string) Line {
	l := Line{Raw: raw, Fields: strings.Fields(raw)}
	switch {
	case strings.Contains(raw, JoinMarker):
		l.Kind = KindJoinMarker
	case reConsumption.MatchString(raw):
		l.Kind = KindConsumption
	case c.tx.MatchString(raw):
		l.Kind = KindTxOp
	case c.rx.MatchString(raw):
		l.Kind = KindRxOp
	case c.append.MatchString(raw):
		l.Kind = KindAppend
	case strings.Contains(raw, EnergestMarker) && !strings.Contains(raw, PeriodSummaryMarker):
		l.Kind = KindEnergest
	}
	return l
}

// op extracts the node id and, when the pattern has a second group, a byte count.
func (c *Classifier) op(l Line) (node, n int, err error) {
	var re *regexp.Regexp
	switch l.Kind {
	case KindTxOp:
		re = c.tx
	case KindRxOp:
		re = c.rx
	case KindAppend:
		re = c.append
	default:
		return 0, 0, fmt.Errorf("not an operation line: %s", l.Kind)
	}
	m := re.FindStringSubmatch(l.Raw)
	if m == nil {
		return 0, 0, fmt.Errorf("%s pattern did not match", l.Kind)
	}
	if node, err = strconv.Atoi(m[1]); err != nil {
		return 0, 0, fmt.Errorf("node id: %w", err)
	}
	if l.Kind == KindAppend {
		return node, 0, nil
	}
	if n, err = strconv.Atoi(m[2]); err != nil {
		return 0, 0, fmt.Errorf("byte count: %w", err)
	}
	return node, n, nil
}

// ParseTimestamp converts an MM:SS.sss timestamp into seconds.
func ParseTimestamp(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("timestamp %q: want MM:SS.sss", s)
	}
	minutes, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: %w", s, err)
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return minutes*60 + seconds, nil
}
