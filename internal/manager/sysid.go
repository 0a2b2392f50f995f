package manager

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/input"
)

// sysidState tracks, per excitation-targeted input, a hold counter
// that increments once per tick and triggers a fresh random value once
// it reaches its hold period. The first hold period is the fixed
// initialHoldPeriod; every one after that is freshly drawn from
// [minHold, maxHold]. Counters start at zero (unlike Planner/
// Controller's cycles-equals-period convention), matching
// Manager::addSysIdParams's zero-initialized holdCounters — the first
// excitation only fires once the initial hold period elapses, not on
// tick one.
type sysidState struct {
	inputs      []input.Input
	holdCounter []uint32
	holdPeriod  []uint32
	minHold     uint32
	maxHold     uint32
	rng         *rand.Rand
}

// initialHoldPeriod is the fixed hold period every sysid input starts
// with, matching Manager::addSysIdParams's use of
// defaultMinHoldPeriod+1 whenever no explicit initHoldTime is supplied
// — which is always, since nothing in this engine's CLI surface
// exposes one. Only hold periods drawn after the first excitation are
// randomized (see drawHoldPeriod).
const initialHoldPeriod = defaultMinHoldPeriod + 1

func drawHoldPeriod(rng *rand.Rand, minHold, maxHold uint32) uint32 {
	if maxHold == minHold {
		return minHold
	}
	return minHold + uint32(rng.Intn(int(maxHold-minHold+1)))
}

func (m *Manager) buildSysid(cfg Config) error {
	names := cfg.SysidInputNames
	if len(names) == 0 {
		return errors.New("sysid mode requires at least one --idips input name")
	}
	minHold := cfg.MinHoldPeriod
	if minHold == 0 {
		minHold = defaultMinHoldPeriod
	}
	maxHold := cfg.MaxHoldPeriod
	if maxHold == 0 {
		maxHold = defaultMaxHoldPeriod
	}
	if maxHold < minHold {
		return errors.Errorf("sysid: maxHoldPeriod %d is less than minHoldPeriod %d", maxHold, minHold)
	}

	st := &sysidState{minHold: minHold, maxHold: maxHold, rng: cfg.Rand}
	for _, name := range names {
		in := m.inputByName(name)
		if in == nil {
			return errors.Errorf("sysid: unknown input name %q (want one of %v)", name, defaultInputNames)
		}
		st.inputs = append(st.inputs, in)
		st.holdCounter = append(st.holdCounter, 0)
		st.holdPeriod = append(st.holdPeriod, initialHoldPeriod)
	}
	m.sysid = st
	return nil
}

// runSysid advances every excitation input's hold counter by one tick
// and, for any that reach their hold period, drives a fresh random
// value, resets the counter, and draws a new hold period.
func (m *Manager) runSysid(g *graph.Graph) error {
	st := m.sysid
	for i, in := range st.inputs {
		st.holdCounter[i]++
		if st.holdCounter[i] < st.holdPeriod[i] {
			continue
		}
		if err := in.SetRandomValue(g, st.rng); err != nil {
			return errors.Wrapf(err, "sysid: setting random value for %q", in.Name())
		}
		st.holdCounter[i] = 0
		st.holdPeriod[i] = drawHoldPeriod(st.rng, st.minHold, st.maxHold)
	}
	return nil
}
