package optimize

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/line-sim/line-sim/sim"
)

// DefaultMaxConfigurations bounds the Cartesian product when Options leaves it unset.
const DefaultMaxConfigurations = 10000

// Axes are the discrete candidate values explored around a base configuration.
// Stations not named keep their base value.
type Axes struct {
	Capacity         map[string][]int     `yaml:"capacity"`
	ProcMean         map[string][]float64 `yaml:"proc_mean"`
	InterarrivalMean []float64            `yaml:"interarrival_mean"`
}

// Param is one axis value of a candidate, e.g. {"Cutting.capacity", 2}.
type Param struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Candidate is one point of the Cartesian product.
type Candidate struct {
	Index  int
	Params []Param
	Config sim.LineConfig
}

type axisKind int

const (
	axisCapacity axisKind = iota
	axisProcMean
	axisInterarrival
)

type axis struct {
	kind    axisKind
	station int
	name    string
	values  []float64
}

// LoadAxes reads an axes YAML document.
func LoadAxes(path string) (Axes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Axes{}, fmt.Errorf("reading axes: %w", err)
	}
	return ParseAxes(data)
}

// ParseAxes decodes an axes YAML document.
func ParseAxes(data []byte) (Axes, error) {
	var a Axes
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Axes{}, fmt.Errorf("parsing axes: %w", err)
	}
	return a, nil
}

// resolve flattens the axes in a stable order: capacity axes then processing-mean
// axes, each in line order, then the inter-arrival axis.
func (a Axes) resolve(base sim.LineConfig) ([]axis, error) {
	for _, names := range []map[string]bool{keys(a.Capacity), keysF(a.ProcMean)} {
		unknown := make([]string, 0)
		for name := range names {
			if base.StationIndex(name) < 0 {
				unknown = append(unknown, name)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, &sim.ConfigError{Field: "axes", Reason: fmt.Sprintf("unknown station %q", unknown[0])}
		}
	}

	var out []axis
	for i, st := range base.Stations {
		if vals, ok := a.Capacity[st.Name]; ok {
			if len(vals) == 0 {
				return nil, &sim.ConfigError{Field: "axes.capacity." + st.Name, Reason: "no candidate values"}
			}
			fs := make([]float64, len(vals))
			for j, v := range vals {
				fs[j] = float64(v)
			}
			out = append(out, axis{kind: axisCapacity, station: i, name: st.Name + ".capacity", values: fs})
		}
	}
	for i, st := range base.Stations {
		if vals, ok := a.ProcMean[st.Name]; ok {
			if len(vals) == 0 {
				return nil, &sim.ConfigError{Field: "axes.proc_mean." + st.Name, Reason: "no candidate values"}
			}
			out = append(out, axis{kind: axisProcMean, station: i, name: st.Name + ".proc_mean", values: vals})
		}
	}
	if len(a.InterarrivalMean) > 0 {
		out = append(out, axis{kind: axisInterarrival, station: -1, name: "interarrival_mean", values: a.InterarrivalMean})
	}
	return out, nil
}

// Count returns the number of configurations the axes enumerate around base.
func (a Axes) Count(base sim.LineConfig) (int, error) {
	axes, err := a.resolve(base)
	if err != nil {
		return 0, err
	}
	n := 1
	for _, ax := range axes {
		n *= len(ax.values)
	}
	return n, nil
}

// Enumerate expands the Cartesian product around base. The last axis varies
// fastest. Candidates are not validated here; an invalid combination is
// reported per scenario by the optimizer.
func (a Axes) Enumerate(base sim.LineConfig, limit int) ([]Candidate, error) {
	axes, err := a.resolve(base)
	if err != nil {
		return nil, err
	}
	n, err := a.Count(base)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMaxConfigurations
	}
	if n > limit {
		return nil, &sim.ConfigError{Field: "axes", Reason: fmt.Sprintf("%d configurations exceed the limit of %d", n, limit)}
	}

	out := make([]Candidate, 0, n)
	idx := make([]int, len(axes))
	for c := 0; c < n; c++ {
		cfg := base.Clone()
		params := make([]Param, len(axes))
		for k, ax := range axes {
			v := ax.values[idx[k]]
			params[k] = Param{Name: ax.name, Value: v}
			switch ax.kind {
			case axisCapacity:
				cfg.Stations[ax.station].Capacity = int(v)
			case axisProcMean:
				cfg.Stations[ax.station].ProcMean = v
			case axisInterarrival:
				cfg.InterarrivalMean = v
			}
		}
		out = append(out, Candidate{Index: c, Params: params, Config: cfg})

		for k := len(axes) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(axes[k].values) {
				break
			}
			idx[k] = 0
		}
	}
	return out, nil
}

func keys(m map[string][]int) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func keysF(m map[string][]float64) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
