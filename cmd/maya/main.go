// Command maya runs the closed-loop power-management engine: it
// samples host sensors, optionally drives actuators with a
// RobustController tracking a Planner/MaskGenerator target (Mask mode)
// or with bounded random excitation (Sysid mode), and logs one line
// per tick until interrupted.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	mayaconfig "github.com/spdfg/maya/internal/config"
	"github.com/spdfg/maya/internal/environment"
	"github.com/spdfg/maya/internal/manager"
	"github.com/spdfg/maya/internal/safetycap"
	"github.com/spdfg/maya/internal/signal"
	"github.com/spdfg/maya/internal/telemetry"
)

var (
	mode        = flag.String("mode", "", "Engine mode: Baseline, Sysid, or Mask (required)")
	idips       = flag.String("idips", "", "Sysid mode: space-separated input names to excite")
	maskKind    = flag.String("mask", "", "Mask mode: Constant, Uniform, Gauss, GaussSine, Sine, or Preset")
	ctlDir      = flag.String("ctldir", "", "Mask mode: directory holding controller/planner files")
	ctlFile     = flag.String("ctlfile", "", "Mask mode: filename prefix for controller/planner files")
	periodMS    = flag.Uint("period", 20, "Tick period, in milliseconds")
	logDir      = flag.String("logdir", "", "Directory under which run logs are written")
	logConfig   = flag.String("logconfig", "", "YAML logging configuration file")
	safetyCapPc = flag.Uint("safetycap", 0, "Optional local RAPL safety cap, as a percentage of max power (0 disables)")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "maya:", err)
		os.Exit(1)
	}
}

func run() error {
	m, err := manager.ParseMode(*mode)
	if err != nil {
		flag.Usage()
		return err
	}

	logCfg, err := telemetry.LoadConfig(*logConfig)
	if err != nil {
		return err
	}
	base := environment.Lookup(environment.LogBaseDir, *logDir)
	if base == "" {
		base = "."
	}
	chain, err := telemetry.Build(logCfg, base)
	if err != nil {
		return err
	}
	defer chain.Close()

	cfg := manager.Config{
		Mode:               m,
		SamplingIntervalMS: uint32(*periodMS),
		RAPLBase:           environment.Lookup(environment.RAPLBaseDir, ""),
		CPUDevBase:         environment.Lookup(environment.CPUDevBaseDir, ""),
		ThermalBase:        environment.Lookup(environment.ThermalBaseDir, ""),
		ShmBase:            environment.Lookup(environment.ShmBaseDir, ""),
	}

	switch m {
	case manager.Sysid:
		if strings.TrimSpace(*idips) == "" {
			flag.Usage()
			return fmt.Errorf("sysid mode requires --idips")
		}
		cfg.SysidInputNames = strings.Fields(*idips)

	case manager.Mask:
		if *ctlDir == "" || *ctlFile == "" {
			flag.Usage()
			return fmt.Errorf("mask mode requires --ctldir and --ctlfile")
		}
		kind, plain, err := parseMaskKind(*maskKind)
		if err != nil {
			return err
		}
		cfg.MaskKind = kind
		cfg.UsePlainPlanner = plain

		ctlCfg, err := mayaconfig.LoadController(*ctlDir, *ctlFile)
		if err != nil {
			return err
		}
		cfg.ControllerConfig = ctlCfg

		plCfg, err := mayaconfig.LoadPlanner(*ctlDir, *ctlFile, *maskKind == "Preset")
		if err != nil {
			return err
		}
		cfg.PlannerConfig = plCfg
	}

	if *safetyCapPc > 0 {
		base := environment.Lookup(environment.RAPLBaseDir, "")
		if base == "" {
			base = "/sys/class/powercap/intel-rapl"
		}
		results, err := safetycap.CapAll(base, int(*safetyCapPc))
		if err != nil {
			chain.Log(telemetry.Console, log.WarnLevel, nil, "safety cap failed: "+err.Error())
		}
		for _, r := range results {
			chain.Log(telemetry.Console, log.InfoLevel, log.Fields{
				"zone": r.Zone, "maxPower": r.MaxPower, "powercap": r.Powercap,
			}, "applied local RAPL safety cap")
		}
	}

	mgr, err := manager.Build(cfg, chain)
	if err != nil {
		return err
	}
	return mgr.Run()
}

func parseMaskKind(s string) (signal.Kind, bool, error) {
	switch s {
	case "Constant", "Preset":
		return 0, true, nil
	case "Gauss":
		return signal.Normal, false, nil
	case "Uniform":
		return signal.Uniform, false, nil
	case "Sine":
		return signal.Sine, false, nil
	case "GaussSine":
		return signal.GaussSine, false, nil
	default:
		return 0, false, fmt.Errorf("unrecognized --mask value %q (want Constant, Uniform, Gauss, GaussSine, Sine, or Preset)", s)
	}
}
