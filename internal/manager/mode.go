package manager

import "github.com/pkg/errors"

// Mode selects the engine's operating mode for the run.
type Mode int

const (
	// Baseline samples sensors and inputs but drives nothing: a passive
	// observation run.
	Baseline Mode = iota
	// Sysid drives a configured subset of inputs with bounded
	// piecewise-constant random excitations, for offline plant-model
	// fitting.
	Sysid
	// Mask runs a Planner/MaskGenerator and a RobustController to track
	// a synthetic target trajectory, masking the host's natural power
	// signature.
	Mask
)

func (m Mode) String() string {
	switch m {
	case Baseline:
		return "Baseline"
	case Sysid:
		return "Sysid"
	case Mask:
		return "Mask"
	default:
		return "Unknown"
	}
}

// ParseMode converts a CLI --mode argument to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "Baseline":
		return Baseline, nil
	case "Sysid":
		return Sysid, nil
	case "Mask":
		return Mask, nil
	default:
		return 0, errors.Errorf("unrecognized mode %q (want Baseline, Sysid, or Mask)", s)
	}
}
