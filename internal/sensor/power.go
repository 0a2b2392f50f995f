package sensor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/vector"
)

// RAPL powercap sysfs layout, as in the kernel's powercap subsystem
// documentation. coreZone carries per-core energy when present;
// otherwise energy is read from the two package zones and summed.
const (
	coreZoneDir    = "intel-rapl:0/intel-rapl:0:0"
	pkgZoneDir1    = "intel-rapl:0"
	pkgZoneDir2    = "intel-rapl:1"
	energyFileName = "energy_uj"
	zoneNameFile   = "name"
)

// DefaultRAPLBase is the real powercap sysfs root. Tests override it by
// constructing a CPUPowerSensor with a temp-dir base instead.
const DefaultRAPLBase = "/sys/class/powercap/intel-rapl"

// CPUPowerSensor samples RAPL energy counters and publishes average
// power (watts) since the previous sample: newEnergy / elapsed time,
// where newEnergy is the microjoule delta read off one or more energy
// counter files.
type CPUPowerSensor struct {
	Base

	base         string
	energyFiles  []string
	cumulativeUJ float64
	firstSample  bool
}

// NewCPUPowerSensor probes base (normally DefaultRAPLBase) to decide
// whether per-core or per-package RAPL energy counters are available,
// and registers a one-pin Output port named name.
func NewCPUPowerSensor(g *graph.Graph, name string, base string) (*CPUPowerSensor, error) {
	if base == "" {
		base = DefaultRAPLBase
	}
	files, err := raplEnergyFiles(base)
	if err != nil {
		return nil, err
	}
	return &CPUPowerSensor{
		Base:        NewBase(g, name, name),
		base:        base,
		energyFiles: files,
		firstSample: true,
	}, nil
}

func raplEnergyFiles(base string) ([]string, error) {
	nameFile := filepath.Join(base, coreZoneDir, zoneNameFile)
	raw, err := os.ReadFile(nameFile)
	if err != nil {
		// No per-core zone: fall back to the two package zones.
		return []string{
			filepath.Join(base, pkgZoneDir1, energyFileName),
			filepath.Join(base, pkgZoneDir2, energyFileName),
		}, nil
	}
	if strings.Contains(string(raw), "core") {
		return []string{filepath.Join(base, coreZoneDir, energyFileName)}, nil
	}
	return []string{
		filepath.Join(base, pkgZoneDir1, energyFileName),
		filepath.Join(base, pkgZoneDir2, energyFileName),
	}, nil
}

func readEnergyUJ(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "reading RAPL energy counter %s", path)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing RAPL energy counter %s", path)
	}
	return v, nil
}

// Sample reads every configured energy counter, sums the microjoule
// reading, and publishes the average power since the previous sample.
// The first sample after construction has no valid previous counter
// value to difference against, so it publishes zero and only seeds the
// counter and sample clock.
func (s *CPUPowerSensor) Sample(g *graph.Graph) (vector.Vector, error) {
	var total float64
	for _, f := range s.energyFiles {
		v, err := readEnergyUJ(f)
		if err != nil {
			return nil, err
		}
		total += v
	}

	elapsed, _ := s.tick()
	newEnergy := total - s.cumulativeUJ
	s.cumulativeUJ = total

	var watts float64
	if !s.firstSample && elapsed > 0 {
		watts = newEnergy / elapsed.Seconds() / 1e6
	}
	s.firstSample = false

	return s.publish(g, vector.Vector{watts})
}
