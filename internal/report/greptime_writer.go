package report

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"energest-report/internal/energest"
)

const defaultGreptimePort = 4001

// greptimeClient is the subset of the ingester client used for writes.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter exports records to GreptimeDB as one experiments row per
// file and one node energy row per node.
type GreptimeDBWriter struct {
	client          greptimeClient
	experimentTable string
	nodeTable       string
	now             func() time.Time
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port").
// Tables are created by the ingester on first write.
func NewGreptimeDBWriter(endpoint, database, tablePrefix string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return newGreptimeDBWriter(client, tablePrefix), nil
}

// ExperimentTable and NodeTable name the tables written under prefix.
func ExperimentTable(prefix string) string { return prefix + "_experiments" }
func NodeTable(prefix string) string { return prefix + "_node_energy" }

func newGreptimeDBWriter(client greptimeClient, prefix string) *GreptimeDBWriter {
	return &GreptimeDBWriter{
		client:          client,
		experimentTable: ExperimentTable(prefix),
		nodeTable:       NodeTable(prefix),
		now:             time.Now,
	}
}

func splitEndpoint(endpoint string) (string, int, error) {
	if endpoint == "" {
		return "", 0, fmt.Errorf("greptime endpoint is empty")
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("greptime endpoint %q: bad port: %w", endpoint, err)
	}
	return host, port, nil
}

// Write inserts a single record.
func (w *GreptimeDBWriter) Write(rec energest.ExperimentRecord) error {
	return w.WriteBatch([]energest.ExperimentRecord{rec})
}

// WriteBatch inserts records and their node rows in one request.
func (w *GreptimeDBWriter) WriteBatch(recs []energest.ExperimentRecord) error {
	if len(recs) == 0 {
		return nil
	}
	ts := w.now()

	exp, err := w.experimentRows(recs, ts)
	if err != nil {
		return err
	}
	nodes, err := w.nodeRows(recs, ts)
	if err != nil {
		return err
	}

	if _, err := w.client.Write(context.Background(), exp, nodes); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}
	log.Printf("[GreptimeDBWriter] wrote %d experiments", len(recs))
	return nil
}

type column struct {
	name string
	typ  types.ColumnType
	tag  bool
}

func newTable(name string, cols []column) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if c.tag {
			err = tbl.AddTagColumn(c.name, c.typ)
		} else {
			err = tbl.AddFieldColumn(c.name, c.typ)
		}
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, c.name, err)
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}

var experimentColumns = []column{
	{"run_id", types.STRING, true},
	{"file", types.STRING, true},
	{"type", types.STRING, true},
	{"variant", types.STRING, false},
	{"hops", types.INT64, false},
	{"bytes", types.INT64, false},
	{"number_nodes", types.INT64, false},
	{"total_energy_mj", types.FLOAT64, false},
	{"sim_time_s", types.FLOAT64, false},
	{"telemetry_bytes", types.INT64, false},
	{"appended_packets", types.INT64, false},
	{"skipped_lines", types.INT64, false},
}

func (w *GreptimeDBWriter) experimentRows(recs []energest.ExperimentRecord, ts time.Time) (*table.Table, error) {
	tbl, err := newTable(w.experimentTable, experimentColumns)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		err := tbl.AddRow(r.RunID, r.File, r.Type, string(r.Variant),
			int64(r.Hops), int64(r.Bytes), int64(r.NumberNodes),
			r.TotalEnergyMJ, r.SimTime, int64(r.TelemetryBytes),
			int64(r.Appended), int64(r.SkippedLines), ts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.File, err)
		}
	}
	return tbl, nil
}

var nodeColumns = []column{
	{"run_id", types.STRING, true},
	{"file", types.STRING, true},
	{"node", types.INT64, true},
	{"type", types.STRING, false},
	{"hops", types.INT64, false},
	{"bytes", types.INT64, false},
	{"energy_mj", types.FLOAT64, false},
	{"charge_mc", types.FLOAT64, false},
	{"period_s", types.FLOAT64, false},
	{"bytes_sourced", types.INT64, false},
}

func (w *GreptimeDBWriter) nodeRows(recs []energest.ExperimentRecord, ts time.Time) (*table.Table, error) {
	tbl, err := newTable(w.nodeTable, nodeColumns)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		for _, id := range r.NodeIDs() {
			e := r.Nodes[id]
			err := tbl.AddRow(r.RunID, r.File, int64(id), r.Type,
				int64(r.Hops), int64(r.Bytes),
				e.EnergyMJ, e.ChargeMC, e.PeriodSeconds,
				int64(r.BytesPerNode[id]), ts)
			if err != nil {
				return nil, fmt.Errorf("%s node %d: %w", r.File, id, err)
			}
		}
	}
	return tbl, nil
}
