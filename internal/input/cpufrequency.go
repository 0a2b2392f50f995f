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

// cpufreq sysfs layout under /sys/devices/system/cpu/cpuN/cpufreq.
const (
	cpuDirPrefix          = "cpu"
	cpufreqSubdir         = "cpufreq"
	scalingCurFreqFile    = "scaling_cur_freq"
	scalingSetspeedFile   = "scaling_setspeed"
	scalingMinFreqFile    = "scaling_min_freq"
	scalingMaxFreqFile    = "scaling_max_freq"
	cpuinfoMinFreqFile    = "cpuinfo_min_freq"
	cpuinfoMaxFreqFile    = "cpuinfo_max_freq"
	scalingAvailFreqFile  = "scaling_available_frequencies"
	scalingGovernorFile   = "scaling_governor"
	userspaceGovernorName = "userspace"
)

// DefaultCPUDevBase is the real cpu sysfs root.
const DefaultCPUDevBase = "/sys/devices/system/cpu"

// CPUFrequency drives every core's cpufreq scaling files in lockstep.
// If the userspace governor is active, it writes scaling_setspeed
// directly; otherwise it pins both scaling_min_freq and
// scaling_max_freq to the target so the active governor enforces it.
type CPUFrequency struct {
	Base

	base          string
	coreIDs       []int
	curFreqFiles  []string
	setspeedFiles []string
	minFreqFiles  []string
	maxFreqFiles  []string
	writeSetspeed bool
}

// NewCPUFrequency probes base (normally DefaultCPUDevBase) for the
// given core ids, reads their shared frequency range, and registers
// ports on g.
func NewCPUFrequency(g *graph.Graph, name string, base string, coreIDs []int) (*CPUFrequency, error) {
	if base == "" {
		base = DefaultCPUDevBase
	}
	if len(coreIDs) == 0 {
		coreIDs = []int{0}
	}

	c := &CPUFrequency{
		Base:    NewBase(g, name),
		base:    base,
		coreIDs: coreIDs,
	}
	for _, id := range coreIDs {
		dir := filepath.Join(base, cpuDirPrefix+strconv.Itoa(id), cpufreqSubdir)
		c.curFreqFiles = append(c.curFreqFiles, filepath.Join(dir, scalingCurFreqFile))
		c.setspeedFiles = append(c.setspeedFiles, filepath.Join(dir, scalingSetspeedFile))
		c.minFreqFiles = append(c.minFreqFiles, filepath.Join(dir, scalingMinFreqFile))
		c.maxFreqFiles = append(c.maxFreqFiles, filepath.Join(dir, scalingMaxFreqFile))
	}

	firstDir := filepath.Join(base, cpuDirPrefix+strconv.Itoa(coreIDs[0]), cpufreqSubdir)

	minVal, err := readUintFile(filepath.Join(firstDir, cpuinfoMinFreqFile))
	if err != nil {
		return nil, err
	}
	maxVal, err := readUintFile(filepath.Join(firstDir, cpuinfoMaxFreqFile))
	if err != nil {
		return nil, err
	}

	allowed, err := readAvailableFrequencies(filepath.Join(firstDir, scalingAvailFreqFile), minVal, maxVal)
	if err != nil {
		return nil, err
	}
	c.SetAllowedValues(allowed)

	governor, err := os.ReadFile(filepath.Join(firstDir, scalingGovernorFile))
	if err != nil {
		return nil, errors.Wrapf(err, "reading scaling governor for %s", name)
	}
	c.writeSetspeed = strings.TrimSpace(string(governor)) == userspaceGovernorName

	if _, err := c.Sample(g); err != nil {
		return nil, err
	}
	return c, nil
}

func readUintFile(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "reading %s", path)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", path)
	}
	return v, nil
}

// readAvailableFrequencies reads the discrete frequency steps a core
// accepts. If the file is absent some governors don't expose one, so
// the range [min, max] is stepped in 200MHz increments instead, as the
// original CPUFrequency constructor does.
func readAvailableFrequencies(path string, minVal, maxVal float64) (vector.Vector, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		var out vector.Vector
		for v := minVal; v <= maxVal+1; v += 200000 {
			out = append(out, v)
		}
		return out, nil
	}
	var out vector.Vector
	for _, f := range strings.Fields(string(raw)) {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		out = append(out, v)
	}
	return out, nil
}

// Sample reads every core's current frequency and publishes the
// maximum (cores in a shared-clock domain should agree; the maximum
// survives any one core momentarily lagging). If the current value
// disagrees with the last value this Input wrote, the discrepancy is
// fed back onto the input port so the next Apply retries it.
func (c *CPUFrequency) Sample(g *graph.Graph) (vector.Vector, error) {
	var maxFreq float64
	for _, f := range c.curFreqFiles {
		v, err := readUintFile(f)
		if err != nil {
			return nil, err
		}
		if v > maxFreq {
			maxFreq = v
		}
	}

	if c.actualWriteValue != 0 && maxFreq != c.actualWriteValue {
		if err := c.SetValue(g, c.actualWriteValue); err != nil {
			return nil, err
		}
	}

	return c.Publish(g, vector.Vector{maxFreq})
}

// Apply quantizes any pending request and writes it to every core's
// scaling files, skipping the write entirely if it matches the
// currently observed frequency.
func (c *CPUFrequency) Apply(g *graph.Graph) error {
	changed, err := c.pullRequested(g)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if _, err := c.Sample(g); err != nil {
		return err
	}
	current := c.Values()[0]
	target := c.actualWriteValue
	if target == current {
		return nil
	}

	if c.writeSetspeed {
		return writeAllUint(c.setspeedFiles, target)
	}
	if target > current {
		if err := writeAllUint(c.maxFreqFiles, target); err != nil {
			return err
		}
		return writeAllUint(c.minFreqFiles, target)
	}
	if err := writeAllUint(c.minFreqFiles, target); err != nil {
		return err
	}
	return writeAllUint(c.maxFreqFiles, target)
}

// Reset pins every core back to [min, max], releasing any pinned
// frequency (only meaningful under the performance-governor write path;
// userspace-governor machines are left alone since scaling_setspeed has
// no notion of a range to release).
func (c *CPUFrequency) Reset(g *graph.Graph) error {
	if c.writeSetspeed {
		return nil
	}
	if err := writeAllUint(c.maxFreqFiles, c.Max()); err != nil {
		return err
	}
	return writeAllUint(c.minFreqFiles, c.Min())
}

func writeAllUint(files []string, val float64) error {
	text := strconv.FormatUint(uint64(val), 10)
	for _, f := range files {
		if err := os.WriteFile(f, []byte(text), 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", f)
		}
	}
	return nil
}
