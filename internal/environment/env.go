// Package environment names the environment variables maya reads at
// startup. Centralizing the names here, rather than inlining
// os.Getenv calls at each call site, keeps them discoverable and lets
// tests override a sysfs root without touching global state.
package environment

import "os"

// RAPLBaseDir overrides the default RAPL powercap sysfs root
// (/sys/class/powercap/intel-rapl), letting a test point the power
// sensor and safety cap at a fixture directory.
var RAPLBaseDir = "MAYA_RAPL_BASE"

// CPUDevBaseDir overrides the default per-core cpufreq sysfs root
// (/sys/devices/system/cpu).
var CPUDevBaseDir = "MAYA_CPU_DEV_BASE"

// ThermalBaseDir overrides the default thermal-zone sysfs root
// (/sys/class/thermal), used to locate the intel_powerclamp device.
var ThermalBaseDir = "MAYA_THERMAL_BASE"

// ShmBaseDir overrides the default shared-memory directory (/dev/shm)
// the PowerBalloon actuator writes to.
var ShmBaseDir = "MAYA_SHM_BASE"

// LogBaseDir overrides the directory run logs are written under.
var LogBaseDir = "MAYA_LOG_BASE"

// Lookup returns the value of the named environment variable, or
// fallback if it is unset or empty.
func Lookup(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
