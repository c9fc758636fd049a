package topology

import "fmt"

// SwitchMode selects how many inputs and outputs a switch node exposes
type SwitchMode string

const (
	ModeAggregator  SwitchMode = "Aggregator"  // many in, one out
	ModeBroadcaster SwitchMode = "Broadcaster" // one in, many out
	ModeMatrix      SwitchMode = "Matrix"      // many in, many out

	DefaultSwitchMode = ModeMatrix

	switchFanWidth = 10
)

// SwitchModes lists the modes in declaration order
var SwitchModes = []SwitchMode{ModeAggregator, ModeBroadcaster, ModeMatrix}

// ParseSwitchMode reads a mode from instance data. Missing or unknown values
// fall back to Matrix instead of failing.
func ParseSwitchMode(v any) SwitchMode {
	s, ok := v.(string)
	if !ok {
		return DefaultSwitchMode
	}
	for _, m := range SwitchModes {
		if string(m) == s {
			return m
		}
	}
	return DefaultSwitchMode
}

// Counts returns the number of input and output handles for a mode
func (m SwitchMode) Counts() (inputs, outputs int) {
	switch m {
	case ModeAggregator:
		return switchFanWidth, 1
	case ModeBroadcaster:
		return 1, switchFanWidth
	default:
		return switchFanWidth, switchFanWidth
	}
}

// SwitchTopology derives handles from data["mode"]
type SwitchTopology struct{}

func (SwitchTopology) Kind() Kind { return KindDerived }

func (SwitchTopology) Resolve(data map[string]any) []HandlePoint {
	mode := ParseSwitchMode(data["mode"])
	in, out := mode.Counts()

	points := make([]HandlePoint, 0, in+out)
	points = append(points, fan(SideLeft, Input, "input", in, ColorSignal)...)
	points = append(points, fan(SideRight, Output, "output", out, ColorSignal)...)
	return points
}

func fan(side Side, dir Direction, prefix string, n int, color Color) []HandlePoint {
	offsets := Distribute(n)
	points := make([]HandlePoint, len(offsets))
	for i, off := range offsets {
		points[i] = HandlePoint{
			ID:        fmt.Sprintf("%s_%d", prefix, i),
			Side:      side,
			Direction: dir,
			Offset:    off,
			Color:     color,
		}
	}
	return points
}
