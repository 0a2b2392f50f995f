// Package config loads the file-backed matrices and vectors the
// controller and planner are parameterized by, following the naming
// convention <dir>/<prefix>_<field>.txt established by the original
// tuning toolchain (RobustController.cpp, Planner.cpp).
package config

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/spdfg/maya/internal/controller"
	"github.com/spdfg/maya/internal/planner"
	"github.com/spdfg/maya/internal/vector"
)

func prefixed(dir, prefix, suffix string) string {
	return filepath.Join(dir, prefix+"_"+suffix)
}

// LoadController reads dimension.txt, numInputs.txt, numYmeas.txt, and
// the A/B/C/D/scaleInputsUp/scaleYmeasDown matrices/vectors for a
// RobustController rooted at dir/prefix.
func LoadController(dir, prefix string) (controller.Config, error) {
	var cfg controller.Config

	dimension, err := vector.LoadScalarInt(prefixed(dir, prefix, "dimension.txt"))
	if err != nil {
		return cfg, errors.Wrap(err, "loading controller dimension")
	}
	numInputs, err := vector.LoadScalarInt(prefixed(dir, prefix, "numInputs.txt"))
	if err != nil {
		return cfg, errors.Wrap(err, "loading controller numInputs")
	}
	numYmeas, err := vector.LoadScalarInt(prefixed(dir, prefix, "numYmeas.txt"))
	if err != nil {
		return cfg, errors.Wrap(err, "loading controller numYmeas")
	}

	if cfg.A, err = vector.LoadMatrix(prefixed(dir, prefix, "A.txt"), dimension, dimension); err != nil {
		return cfg, errors.Wrap(err, "loading controller A")
	}
	if cfg.B, err = vector.LoadMatrix(prefixed(dir, prefix, "B.txt"), dimension, numYmeas); err != nil {
		return cfg, errors.Wrap(err, "loading controller B")
	}
	if cfg.C, err = vector.LoadMatrix(prefixed(dir, prefix, "C.txt"), numInputs, dimension); err != nil {
		return cfg, errors.Wrap(err, "loading controller C")
	}
	if cfg.D, err = vector.LoadMatrix(prefixed(dir, prefix, "D.txt"), numInputs, numYmeas); err != nil {
		return cfg, errors.Wrap(err, "loading controller D")
	}
	if cfg.ScaleInUp, err = vector.LoadVector(prefixed(dir, prefix, "scaleInputsUp.txt"), numInputs); err != nil {
		return cfg, errors.Wrap(err, "loading controller scaleInputsUp")
	}
	if cfg.ScaleOutDown, err = vector.LoadVector(prefixed(dir, prefix, "scaleYmeasDown.txt"), numYmeas); err != nil {
		return cfg, errors.Wrap(err, "loading controller scaleYmeasDown")
	}
	return cfg, nil
}

// LoadPlanner reads maxLimits.txt, minLimits.txt, targets.txt and,
// when usePreset is set, presetlen.txt and presets.txt for a Planner
// or MaskGenerator rooted at dir/prefix.
func LoadPlanner(dir, prefix string, usePreset bool) (planner.Config, error) {
	var cfg planner.Config
	var err error

	if cfg.MaxLimits, err = vector.LoadVector(prefixed(dir, prefix, "maxLimits.txt"), -1); err != nil {
		return cfg, errors.Wrap(err, "loading planner maxLimits")
	}
	if cfg.MinLimits, err = vector.LoadVector(prefixed(dir, prefix, "minLimits.txt"), len(cfg.MaxLimits)); err != nil {
		return cfg, errors.Wrap(err, "loading planner minLimits")
	}
	if cfg.Targets, err = vector.LoadVector(prefixed(dir, prefix, "targets.txt"), len(cfg.MaxLimits)); err != nil {
		return cfg, errors.Wrap(err, "loading planner targets")
	}

	cfg.UsePreset = usePreset
	if !usePreset {
		return cfg, nil
	}

	presetLen, err := vector.LoadScalarInt(prefixed(dir, prefix, "presetlen.txt"))
	if err != nil {
		return cfg, errors.Wrap(err, "loading planner presetlen")
	}
	if cfg.PresetTargets, err = vector.LoadMatrix(prefixed(dir, prefix, "presets.txt"), presetLen, len(cfg.Targets)); err != nil {
		return cfg, errors.Wrap(err, "loading planner presets")
	}
	return cfg, nil
}
