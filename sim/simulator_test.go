package sim

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/line-sim/line-sim/sim/trace"
)

func TestSimulator_SingleProduct_DeterministicTimeline(t *testing.T) {
	// GIVEN one product arriving at t=1 to a station with processing time 10
	rec := mustRun(t, singleStationLine(10, 1, 1), Options{})

	// THEN it completes at 11 with no wait
	require.Len(t, rec.Completed, 1)
	p := rec.Completed[0]
	assert.Equal(t, 1.0, p.ArrivalTime)
	assert.Equal(t, 11.0, p.CompletionTime)
	assert.Equal(t, 10.0, p.LeadTime())
	assert.Equal(t, 0.0, p.Stages[0].Wait)
	assert.Equal(t, 10.0, rec.Stations[0].BusyTime)
	assert.Equal(t, "P0", p.ID)
}

func TestSimulator_Failure_PausesAndResumesRemainingTime(t *testing.T) {
	// GIVEN a product processing from t=1 for 10 units and an outage over [4, 9]
	s, err := NewSimulator(singleStationLine(10, 1, 1), Options{})
	require.NoError(t, err)
	m := s.Machines[0]
	scheduleAt(s.Sched, 4, m.fail)
	scheduleAt(s.Sched, 9, m.repair)

	// WHEN the line runs
	rec, err := s.Run(context.Background())
	require.NoError(t, err)

	// THEN the 3 units done before the outage are kept and 7 remain after repair
	require.Len(t, rec.Completed, 1)
	p := rec.Completed[0]
	assert.InDelta(t, 16, p.CompletionTime, 1e-9)
	assert.Equal(t, 1, p.Stages[0].Interruptions)
	assert.Equal(t, 10.0, p.Stages[0].Processing)
	st := rec.Stations[0]
	assert.InDelta(t, 10, st.BusyTime, 1e-9)
	assert.InDelta(t, 5, st.DownTime, 1e-9)
	assert.Equal(t, 1, st.Failures)
}

func TestSimulator_Failure_BlocksQueuedUnitsUntilRepair(t *testing.T) {
	// GIVEN two products at t=1 and t=2 sharing a capacity-1 station, outage over [4, 9]
	s, err := NewSimulator(singleStationLine(10, 1, 2), Options{})
	require.NoError(t, err)
	m := s.Machines[0]
	scheduleAt(s.Sched, 4, m.fail)
	scheduleAt(s.Sched, 9, m.repair)

	rec, err := s.Run(context.Background())
	require.NoError(t, err)

	// THEN the second starts only when the first finishes after the repair
	require.Len(t, rec.Completed, 2)
	assert.InDelta(t, 16, rec.Completed[0].CompletionTime, 1e-9)
	assert.InDelta(t, 16, rec.Completed[1].Stages[0].Start, 1e-9)
	assert.InDelta(t, 14, rec.Completed[1].Stages[0].Wait, 1e-9)
	assert.InDelta(t, 26, rec.Completed[1].CompletionTime, 1e-9)
	assert.Equal(t, 0, rec.Completed[1].Stages[0].Interruptions)
}

func TestSimulator_NoMTBF_NeverDown(t *testing.T) {
	rec := mustRun(t, DefaultLineConfig(), Options{})
	for _, st := range rec.Stations {
		assert.Equal(t, 0.0, st.DownTime, st.Name)
		assert.Equal(t, 0, st.Failures, st.Name)
	}
	assert.Equal(t, 0.0, rec.Cost.Downtime)
}

func TestSimulator_WithFailures_BusyPlusDownWithinWindow(t *testing.T) {
	// GIVEN a station that fails often
	cfg := DefaultLineConfig()
	cfg.SimTime = 2000
	cfg.Stations[1].MTBF = 60
	cfg.Stations[1].MTTR = 8

	rec := mustRun(t, cfg, Options{})

	// THEN it failed, accumulated downtime, and never processed while down
	st := rec.Stations[1]
	assert.Greater(t, st.Failures, 0)
	assert.Greater(t, st.DownTime, 0.0)
	assert.LessOrEqual(t, st.BusyTime/float64(st.Capacity)+st.DownTime, rec.Window()+1e-6)
	assert.Greater(t, rec.Cost.Downtime, 0.0)
}

func TestSimulator_Conservation(t *testing.T) {
	cfg := DefaultLineConfig()
	cfg.Stations[2].MTBF = 90
	cfg.Stations[2].MTTR = 5
	rec := mustRun(t, cfg, Options{})

	// Every product created is either complete or still in the system.
	assert.Equal(t, rec.Arrivals, rec.CompletedTotal+rec.FinalWIP)
	assert.Len(t, rec.Products, rec.Arrivals)
	for _, st := range rec.Stations {
		// Every request was granted or is still waiting.
		assert.Equal(t, st.Arrivals, st.Grants+st.FinalQueue, st.Name)
		// Every grant finished processing or still holds capacity.
		assert.Equal(t, st.Grants, st.Processed+st.FinalHeld, st.Name)
		assert.LessOrEqual(t, st.FinalHeld, st.Capacity, st.Name)
	}
	for _, p := range rec.Completed {
		assert.Len(t, p.Stages, len(cfg.Stations))
		for i := 1; i < len(p.Stages); i++ {
			assert.GreaterOrEqual(t, p.Stages[i].QueueEnter, p.Stages[i-1].End)
		}
	}
}

func TestSimulator_Conservation_DrainedLineWithFailures(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			// GIVEN 200 products through the reference line with two failing stations
			// AND a horizon long enough for the line to drain
			cfg := DefaultLineConfig()
			cfg.Seed = seed
			cfg.MaxArrivals = 200
			cfg.SimTime = 1e5
			cfg.MonitorInterval = 1000
			cfg.Stations[0].MTBF, cfg.Stations[0].MTTR = 60, 5
			cfg.Stations[2].MTBF, cfg.Stations[2].MTTR = 90, 8

			// WHEN the line runs
			rec := mustRun(t, cfg, Options{})

			// THEN every product leaves the line and no station holds or queues one
			assert.Equal(t, 200, rec.Arrivals)
			assert.Equal(t, 200, rec.CompletedTotal)
			assert.Equal(t, 0, rec.FinalWIP)
			for _, st := range rec.Stations {
				assert.Equal(t, 200, st.Arrivals, st.Name)
				assert.Equal(t, 200, st.Grants, st.Name)
				assert.Equal(t, 200, st.Processed, st.Name)
				assert.Zero(t, st.FinalQueue, st.Name)
				assert.Zero(t, st.FinalHeld, st.Name)
			}
			assert.Greater(t, rec.Stations[0].Failures, 0)
			for _, p := range rec.Products {
				assert.True(t, p.Completed, p.ID)
				assert.Len(t, p.Stages, len(cfg.Stations), p.ID)
			}
		})
	}
}

func TestSimulator_PriorityStation_ServesHighPriorityFirst(t *testing.T) {
	// GIVEN a saturated station (arrivals every 1, processing 3) and a 50/50 priority mix
	mixed := func(discipline QueueDiscipline) LineConfig {
		cfg := singleStationLine(3, 1, 60)
		cfg.SimTime = 1000
		cfg.PriorityClasses = []PriorityClass{{Priority: 1, Weight: 1}, {Priority: 0, Weight: 1}}
		cfg.Stations[0].QueueDiscipline = discipline
		return cfg
	}
	meanWait := func(rec *RunRecord, priority int) float64 {
		sum, n := 0.0, 0
		for _, p := range rec.Completed {
			if p.Priority == priority {
				sum += p.Stages[0].Wait
				n++
			}
		}
		require.NotZero(t, n)
		return sum / float64(n)
	}

	// WHEN run under both disciplines
	fifo := mustRun(t, mixed(DisciplineFIFO), Options{})
	prio := mustRun(t, mixed(DisciplinePriority), Options{})

	// THEN the same products carry the same priorities
	require.Len(t, prio.Products, 60)
	for i := range prio.Products {
		assert.Equal(t, fifo.Products[i].Priority, prio.Products[i].Priority)
	}
	// AND FIFO starts products in arrival order
	for i := 1; i < len(fifo.Products); i++ {
		assert.Greater(t, fifo.Products[i].Stages[0].Start, fifo.Products[i-1].Stages[0].Start)
	}
	// AND the priority station makes high-priority products wait less than low ones
	assert.Less(t, meanWait(prio, 1), meanWait(prio, 0))
	assert.Less(t, meanWait(prio, 1), meanWait(fifo, 1))
	// AND both drain completely
	assert.Equal(t, 60, fifo.CompletedTotal)
	assert.Equal(t, 60, prio.CompletedTotal)
}

func TestSimulator_NoPriorityClasses_AllPriorityZero(t *testing.T) {
	rec := mustRun(t, DefaultLineConfig(), Options{})
	for _, p := range rec.Products {
		assert.Zero(t, p.Priority, p.ID)
	}
}

func TestSimulator_Warmup_ExcludesEarlyObservations(t *testing.T) {
	// GIVEN the reference line with a 120-minute warm-up
	cfg := DefaultLineConfig()
	cfg.WarmupTime = 120

	rec := mustRun(t, cfg, Options{})

	// THEN only products completing after warm-up are measured
	require.NotEmpty(t, rec.Completed)
	for _, p := range rec.Completed {
		assert.GreaterOrEqual(t, p.CompletionTime, 120.0)
	}
	assert.Greater(t, rec.CompletedTotal, len(rec.Completed))
	assert.Less(t, rec.MeasuredArrivals, rec.Arrivals)
	for _, pt := range rec.Series {
		assert.GreaterOrEqual(t, pt.Time, 120.0)
	}
	assert.Equal(t, 360.0, rec.Window())
	for _, st := range rec.Stations {
		assert.LessOrEqual(t, st.BusyTime, rec.Window()*float64(st.Capacity)+1e-6)
	}
}

func TestSimulator_SameSeed_IdenticalRuns(t *testing.T) {
	cfg := DefaultLineConfig()
	cfg.Stations[0].MTBF = 100
	cfg.Stations[0].MTTR = 10

	a := mustRun(t, cfg, Options{})
	b := mustRun(t, cfg, Options{})

	require.Equal(t, len(a.Completed), len(b.Completed))
	for i := range a.Completed {
		assert.Equal(t, a.Completed[i].CompletionTime, b.Completed[i].CompletionTime)
		assert.Equal(t, a.Completed[i].ID, b.Completed[i].ID)
	}
	assert.Equal(t, a.Cost, b.Cost)
	assert.Equal(t, a.Series, b.Series)
	assert.Equal(t, a.EventsFired, b.EventsFired)
}

func TestSimulator_DifferentSeed_DifferentRuns(t *testing.T) {
	cfg := DefaultLineConfig()
	a := mustRun(t, cfg, Options{})
	cfg.Seed = 43
	b := mustRun(t, cfg, Options{})
	assert.NotEqual(t, a.Cost.Total, b.Cost.Total)
}

func TestSimulator_Degenerate_FlagsInsufficientData(t *testing.T) {
	// GIVEN processing longer than the horizon
	cfg := singleStationLine(500, 1, 0)

	rec := mustRun(t, cfg, Options{})

	assert.True(t, rec.InsufficientData)
	assert.True(t, errors.Is(rec.Err(), ErrDegenerateRun))
	assert.Empty(t, rec.Completed)
	assert.Equal(t, 0.0, rec.Cost.PerUnit)
}

func TestSimulator_CancelledContext_NoRecord(t *testing.T) {
	s, err := NewSimulator(DefaultLineConfig(), Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := s.Run(ctx)

	assert.Nil(t, rec)
	assert.True(t, errors.Is(err, ErrRunAborted))
}

func TestSimulator_RunTwice_Errors(t *testing.T) {
	s, err := NewSimulator(singleStationLine(1, 1, 1), Options{})
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.Error(t, err)
}

func TestNewSimulator_InvalidConfig_ConfigError(t *testing.T) {
	cfg := DefaultLineConfig()
	cfg.Stations[0].Capacity = 0
	_, err := NewSimulator(cfg, Options{})
	assert.True(t, IsConfigError(err))

	_, err = NewSimulator(DefaultLineConfig(), Options{TraceLevel: "verbose"})
	assert.True(t, IsConfigError(err))
}

func TestSimulator_MaxArrivals_CapsProducts(t *testing.T) {
	cfg := DefaultLineConfig()
	cfg.MaxArrivals = 10
	rec := mustRun(t, cfg, Options{})
	assert.Equal(t, 10, rec.Arrivals)
}

func TestSimulator_Trace_RecordsTransitionsAndEvents(t *testing.T) {
	// GIVEN tracing at the events level
	rec := mustRun(t, singleStationLine(2, 1, 3), Options{TraceLevel: trace.TraceLevelEvents})

	// THEN the trace agrees with the record
	require.NotNil(t, rec.Trace)
	sum := trace.Summarize(rec.Trace)
	assert.Equal(t, rec.CompletedTotal, sum.Completions)
	assert.Equal(t, 3, sum.GrantsByStation["Press"])
	assert.Equal(t, int(rec.EventsFired), sum.TotalEvents)
	assert.Greater(t, sum.EventsByKind[string(EventStart)], 0)
}

func TestSimulator_NoTrace_ByDefault(t *testing.T) {
	rec := mustRun(t, singleStationLine(2, 1, 1), Options{})
	assert.Nil(t, rec.Trace)
}

func TestSimulator_Cost_LaborCoversWholeWindow(t *testing.T) {
	// GIVEN a capacity-2 station, labor 1/unit-time, energy 0.5, holding 0.1
	cfg := singleStationLine(10, 2, 1)

	rec := mustRun(t, cfg, Options{})

	// THEN labor is paid for both machines for the whole horizon
	assert.InDelta(t, 200, rec.Cost.Labor, 1e-9)
	assert.InDelta(t, 5, rec.Cost.Energy, 1e-9)
	assert.InDelta(t, 1, rec.Cost.Holding, 1e-9)
	assert.InDelta(t, 206, rec.Cost.Total, 1e-9)
	assert.InDelta(t, 206, rec.Cost.PerUnit, 1e-9)
}

func TestSimulator_Series_SampledAtMonitorInterval(t *testing.T) {
	cfg := singleStationLine(2, 1, 0)
	cfg.MonitorInterval = 10
	rec := mustRun(t, cfg, Options{})

	require.Len(t, rec.Series, 10)
	assert.Equal(t, 10.0, rec.Series[0].Time)
	assert.Equal(t, 100.0, rec.Series[9].Time)
	for i := 1; i < len(rec.Series); i++ {
		assert.GreaterOrEqual(t, rec.Series[i].Completed, rec.Series[i-1].Completed)
	}
}
