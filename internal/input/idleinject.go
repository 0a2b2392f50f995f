package input

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/vector"
)

// Intel Powerclamp thermal-cooling-device sysfs layout.
const (
	thermalDirName       = "/sys/class/thermal"
	deviceTypeFile       = "type"
	pclampDeviceTypeName = "intel_powerclamp"
	pclampSetFile        = "cur_state"
	pclampMaxFile        = "max_state"
	idleInjectStep       = 4
)

// DefaultThermalBase is the real thermal-cooling-device sysfs root.
const DefaultThermalBase = thermalDirName

// IdleInject drives Intel Powerclamp idle-cycle injection: cur_state is
// the percentage of each sampling window spent idle, quantized to
// multiples of 4 up to the device's max_state.
type IdleInject struct {
	Base

	setFile string
}

// NewIdleInject scans base for the intel_powerclamp cooling device,
// reads its maximum idle level, and registers ports on g.
func NewIdleInject(g *graph.Graph, name string, base string) (*IdleInject, error) {
	if base == "" {
		base = DefaultThermalBase
	}

	setFile, maxFile, err := findPowerclampDevice(base)
	if err != nil {
		return nil, err
	}

	maxLevel, err := readUintFile(maxFile)
	if err != nil {
		return nil, err
	}

	var allowed vector.Vector
	for v := 0.0; v <= maxLevel; v += idleInjectStep {
		allowed = append(allowed, v)
	}

	ii := &IdleInject{Base: NewBase(g, name), setFile: setFile}
	ii.SetAllowedValues(allowed)

	if err := ii.SetMin(g); err != nil {
		return nil, err
	}
	if _, err := ii.Sample(g); err != nil {
		return nil, err
	}
	return ii, nil
}

func findPowerclampDevice(base string) (setFile, maxFile string, err error) {
	entries, readErr := os.ReadDir(base)
	if readErr != nil {
		return "", "", errors.Wrapf(readErr, "reading %s", base)
	}
	for _, e := range entries {
		typeFile := filepath.Join(base, e.Name(), deviceTypeFile)
		raw, readErr := os.ReadFile(typeFile)
		if readErr != nil {
			continue
		}
		if strings.TrimSpace(string(raw)) == pclampDeviceTypeName {
			return filepath.Join(base, e.Name(), pclampSetFile),
				filepath.Join(base, e.Name(), pclampMaxFile), nil
		}
	}
	return "", "", errors.Errorf("intel_powerclamp cooling device not found under %s", base)
}

// Sample reads the current idle-injection level. A device that has not
// yet been written to reports -1; that is surfaced as zero.
func (ii *IdleInject) Sample(g *graph.Graph) (vector.Vector, error) {
	raw, err := os.ReadFile(ii.setFile)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", ii.setFile)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", ii.setFile)
	}
	if v == -1 {
		v = 0
	}
	return ii.Publish(g, vector.Vector{v})
}

// Apply quantizes any pending request and writes it, skipping the write
// if it matches the currently published level. The device always
// echoes back whatever was last written rather than the level it
// actually achieved, so the published value is taken from the written
// value rather than re-read from the device.
func (ii *IdleInject) Apply(g *graph.Graph) error {
	changed, err := ii.pullRequested(g)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if ii.Values()[0] == ii.actualWriteValue {
		return nil
	}
	if err := os.WriteFile(ii.setFile, []byte(strconv.FormatFloat(ii.actualWriteValue, 'f', -1, 64)), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", ii.setFile)
	}
	_, err = ii.Publish(g, vector.Vector{ii.actualWriteValue})
	return err
}

// Reset writes zero, turning idle injection off.
func (ii *IdleInject) Reset(g *graph.Graph) error {
	if err := os.WriteFile(ii.setFile, []byte("0"), 0o644); err != nil {
		return errors.Wrapf(err, "resetting %s", ii.setFile)
	}
	return nil
}
