package controller

import (
	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/vector"
)

// RobustController implements a linear time-invariant state-space
// feedback law:
//
//	e~        = (target - measuredOutput) ⊙ scaleOutDown
//	state'    = A·state + B·e~
//	rawInputs = C·state + D·e~
//	newInputs = (rawInputs ⊙ scaleInUp) + currentInputs
//
// A, B, C, D and the two scale vectors are loaded once at construction
// from a controller directory (see internal/config) and never change;
// only state evolves, once per sampling interval.
type RobustController struct {
	Controller

	A, B, C, D *vector.Matrix

	scaleInUp    vector.Vector
	scaleOutDown vector.Vector

	state        vector.Vector
	deltaOutputs vector.Vector
}

// Config is the file-backed matrix/vector data a RobustController is
// built from.
type Config struct {
	A, B, C, D   *vector.Matrix
	ScaleInUp    vector.Vector
	ScaleOutDown vector.Vector
}

// New constructs a RobustController with the given state dimension,
// input count, and measurement count implied by cfg's matrix shapes.
func New(g *graph.Graph, name string, cfg Config, samplingInterval uint32) *RobustController {
	numInputs := cfg.C.Rows()
	numOutputs := cfg.B.Cols()
	dimension := cfg.A.Rows()

	return &RobustController{
		Controller:   newBase(g, name, numInputs, numOutputs, samplingInterval),
		A:            cfg.A,
		B:            cfg.B,
		C:            cfg.C,
		D:            cfg.D,
		scaleInUp:    cfg.ScaleInUp,
		scaleOutDown: cfg.ScaleOutDown,
		state:        vector.New(dimension),
	}
}

// Reset clears the controller's internal state, forgetting any
// accumulated feedback history.
func (rc *RobustController) Reset() {
	rc.state = vector.New(len(rc.state))
}

// Run advances the controller by one tick, applying the control law on
// sampling-interval boundaries and holding the last input steady
// otherwise.
func (rc *RobustController) Run(g *graph.Graph) error {
	run := rc.shouldRun()

	currInputs, err := g.ReadPort(rc.CurrInputPort())
	if err != nil {
		return err
	}
	targets, err := g.ReadPort(rc.OutputTargetPort())
	if err != nil {
		return err
	}
	outputs, err := g.ReadPort(rc.OutputPort())
	if err != nil {
		return err
	}

	if !run {
		return rc.publish(g, currInputs, targets)
	}

	newInputs, err := rc.computeNewInputs(currInputs, targets, outputs)
	if err != nil {
		return err
	}
	return rc.publish(g, newInputs, targets)
}

func (rc *RobustController) computeNewInputs(currInputs, targets, outputs vector.Vector) (vector.Vector, error) {
	deltaOutputs, err := targets.Sub(outputs)
	if err != nil {
		return nil, err
	}
	rc.deltaOutputs = deltaOutputs

	normalizedDelta, err := deltaOutputs.MulElem(rc.scaleOutDown)
	if err != nil {
		return nil, err
	}

	bTerm, err := rc.B.MatVec(normalizedDelta)
	if err != nil {
		return nil, err
	}
	aTerm, err := rc.A.MatVec(rc.state)
	if err != nil {
		return nil, err
	}
	newState, err := aTerm.Add(bTerm)
	if err != nil {
		return nil, err
	}

	cTerm, err := rc.C.MatVec(rc.state)
	if err != nil {
		return nil, err
	}
	dTerm, err := rc.D.MatVec(normalizedDelta)
	if err != nil {
		return nil, err
	}
	newNormalizedInputs, err := cTerm.Add(dTerm)
	if err != nil {
		return nil, err
	}

	denormalized, err := newNormalizedInputs.MulElem(rc.scaleInUp)
	if err != nil {
		return nil, err
	}
	newInputs, err := denormalized.Add(currInputs)
	if err != nil {
		return nil, err
	}

	rc.state = newState
	return newInputs, nil
}
