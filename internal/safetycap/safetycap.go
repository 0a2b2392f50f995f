// Package safetycap caps RAPL power zones to a percentage of their
// hardware-reported maximum as a best-effort safety valve, adapted
// from the teacher's local-host rapl-daemon capping utility. Unlike
// the teacher's rapl/cap.go, this never reaches over SSH to a
// different host — multi-host coordination is out of scope here — and
// cmd/maya invokes it once at startup, before the tick loop starts; it
// is not invoked from the tick loop or at shutdown, so its sysfs
// latency can't perturb the control loop's timing.
package safetycap

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	raplZonePrefix      = "intel-rapl"
	maxPowerFileShort   = "constraint_0_max_power_uw"
	powerLimitFileShort = "constraint_0_power_limit_uw"
)

// Result records, per RAPL zone, the max power read and the cap
// written, for logging.
type Result struct {
	Zone     string
	MaxPower uint64
	Powercap uint64
}

// CapAll caps every top-level RAPL zone under base (e.g.
// /sys/class/powercap/intel-rapl) to percentage of its short-window
// max power. A zone that can't be read or written is skipped, not
// fatal: this is a best-effort valve, not a required precondition for
// the control loop to start.
func CapAll(base string, percentage int) ([]Result, error) {
	if percentage <= 0 || percentage > 100 {
		return nil, errors.Errorf("cap percentage must be between 1 and 100, got %d", percentage)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, errors.Wrapf(err, "reading RAPL base %s", base)
	}

	var results []Result
	for _, entry := range entries {
		fields := strings.Split(entry.Name(), ":")
		// Zones are named intel-rapl:X; sub-zones intel-rapl:X:Y are skipped.
		if len(fields) != 2 || fields[0] != raplZonePrefix {
			continue
		}

		zoneDir := filepath.Join(base, entry.Name())
		max, err := readMaxPower(filepath.Join(zoneDir, maxPowerFileShort))
		if err != nil {
			continue
		}

		powercap := uint64(math.Ceil(float64(max) * (float64(percentage) / 100)))
		if err := writePowercap(filepath.Join(zoneDir, powerLimitFileShort), powercap); err != nil {
			continue
		}

		results = append(results, Result{Zone: entry.Name(), MaxPower: max, Powercap: powercap})
	}

	return results, nil
}

func readMaxPower(path string) (uint64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
}

func writePowercap(path string, value uint64) error {
	return os.WriteFile(path, []byte(strconv.FormatUint(value, 10)), 0o644)
}
