// Package export flattens simulation and optimizer results into tables and
// writes them as CSV, JSON or Postgres rows.
package export

import (
	"fmt"

	"github.com/line-sim/line-sim/sim/line"
	"github.com/line-sim/line-sim/sim/optimize"
)

// ColumnType is the SQL type of a column.
type ColumnType string

const (
	TypeText  ColumnType = "TEXT"
	TypeInt   ColumnType = "BIGINT"
	TypeFloat ColumnType = "DOUBLE PRECISION"
	TypeBool  ColumnType = "BOOLEAN"
)

const (
	tableProduct  = "products"
	tableStage    = "product_stages"
	tableStation  = "stations"
	tableSeries   = "series"
	tableQueue    = "queue_lengths"
	tableScenario = "scenarios"
)

// Column is one field of a row schema.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a named row schema with its rows. Each row holds one value per column.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func (t *Table) add(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("export: table %s row has %d values, want %d", t.Name, len(values), len(t.Columns)))
	}
	t.Rows = append(t.Rows, values)
}

var (
	productColumns = []Column{
		{"run_id", TypeText}, {"product_id", TypeText}, {"arrival_time", TypeFloat},
		{"completion_time", TypeFloat}, {"lead_time", TypeFloat}, {"completed", TypeBool},
		{"measured", TypeBool}, {"priority", TypeInt},
	}
	stageColumns = []Column{
		{"run_id", TypeText}, {"product_id", TypeText}, {"station", TypeText},
		{"queue_enter", TypeFloat}, {"start", TypeFloat}, {"end", TypeFloat},
		{"wait", TypeFloat}, {"processing", TypeFloat}, {"interruptions", TypeInt},
	}
	stationColumns = []Column{
		{"run_id", TypeText}, {"station", TypeText}, {"capacity", TypeInt},
		{"utilization", TypeFloat}, {"busy_time", TypeFloat}, {"down_time", TypeFloat},
		{"availability", TypeFloat}, {"avg_queue", TypeFloat}, {"max_queue", TypeInt},
		{"avg_wait", TypeFloat}, {"cycle_time_cv", TypeFloat}, {"processed", TypeInt},
		{"failures", TypeInt}, {"throughput_per_hour", TypeFloat},
		{"bottleneck_rank", TypeInt}, {"bottleneck_score", TypeFloat},
	}
	seriesColumns = []Column{
		{"run_id", TypeText}, {"time", TypeFloat}, {"wip", TypeInt},
		{"total_queue", TypeInt}, {"completed", TypeInt}, {"throughput_per_hour", TypeFloat},
	}
	queueColumns = []Column{
		{"run_id", TypeText}, {"time", TypeFloat}, {"station", TypeText}, {"queue_len", TypeInt},
	}
	scenarioColumns = []Column{
		{"scenario_id", TypeText}, {"index", TypeInt}, {"params", TypeText},
		{"status", TypeText}, {"reason", TypeText}, {"replications", TypeInt},
		{"throughput_mean", TypeFloat}, {"throughput_std", TypeFloat},
		{"lead_time_mean", TypeFloat}, {"lead_time_std", TypeFloat},
		{"cost_mean", TypeFloat}, {"capital_cost", TypeFloat}, {"score", TypeFloat},
		{"bottleneck", TypeText}, {"feasible", TypeBool}, {"pareto", TypeBool}, {"rank", TypeInt},
		{"throughput_improvement_pct", TypeFloat}, {"lead_time_reduction_pct", TypeFloat},
	}
)

// ResultTables flattens one simulation into product, stage, station, series
// and queue tables keyed by the run ID.
func ResultTables(res *line.Result) []Table {
	products := Table{Name: tableProduct, Columns: productColumns}
	stages := Table{Name: tableStage, Columns: stageColumns}
	for _, p := range res.Products {
		products.add(res.RunID, p.ID, p.ArrivalTime, p.CompletionTime, p.LeadTime, p.Completed, p.Measured, p.Priority)
		for _, st := range p.Stages {
			stages.add(res.RunID, p.ID, st.Station, st.QueueEnter, st.Start, st.End, st.Wait, st.Processing, st.Interruptions)
		}
	}

	rankOf := make(map[string]int, len(res.Bottlenecks))
	scoreOf := make(map[string]float64, len(res.Bottlenecks))
	for _, b := range res.Bottlenecks {
		rankOf[b.Station], scoreOf[b.Station] = b.Rank, b.Score
	}
	stations := Table{Name: tableStation, Columns: stationColumns}
	for _, sm := range res.StationMetrics {
		stations.add(res.RunID, sm.Name, sm.Capacity, sm.Utilization, sm.BusyTime, sm.DownTime,
			sm.Availability, sm.AvgQueue, sm.MaxQueue, sm.AvgWait, sm.CycleTimeCV, sm.Processed,
			sm.Failures, sm.ThroughputPerHour, rankOf[sm.Name], scoreOf[sm.Name])
	}

	series := Table{Name: tableSeries, Columns: seriesColumns}
	queues := Table{Name: tableQueue, Columns: queueColumns}
	for _, pt := range res.Series {
		series.add(res.RunID, pt.Time, pt.WIP, pt.TotalQueue, pt.Completed, pt.ThroughputPerHour)
		for i, q := range pt.QueueLen {
			if i < len(res.Stations) {
				queues.add(res.RunID, pt.Time, res.Stations[i], q)
			}
		}
	}
	return []Table{products, stages, stations, series, queues}
}

// ScenarioTable flattens an optimizer outcome, baseline first, then results in
// enumeration order.
func ScenarioTable(out *optimize.Outcome) Table {
	t := Table{Name: tableScenario, Columns: scenarioColumns}
	all := append([]optimize.ScenarioResult{out.Baseline}, out.Results...)
	for _, r := range all {
		t.add(r.ID, r.Index, formatParams(r.Params), string(r.Status), r.Reason, len(r.Replications),
			r.Throughput.Mean, r.Throughput.StdDev, r.LeadTime.Mean, r.LeadTime.StdDev,
			r.Cost.Mean, r.CapitalCost, r.Score, r.Bottleneck, r.Feasible, r.Pareto, r.Rank,
			r.ThroughputImprovementPct, r.LeadTimeReductionPct)
	}
	return t
}

func formatParams(params []optimize.Param) string {
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ";"
		}
		s += fmt.Sprintf("%s=%g", p.Name, p.Value)
	}
	return s
}
