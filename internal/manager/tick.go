package manager

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/spdfg/maya/internal/telemetry"
)

// Run drives the tick loop until Stop is called or SIGINT/SIGTERM is
// received, then resets every input before returning. Errors from a
// single tick's host I/O are logged and swallowed (spec.md §7: transient
// read/write failures must not abort the loop); an error preparing the
// tick itself (a wire transfer against a malformed graph) is a
// programming/configuration bug and is returned.
func (m *Manager) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		m.Stop()
	}()
	defer signal.Stop(sigCh)

	m.printHeader()

	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for tick := 0; !m.Stopped(); tick++ {
		if err := m.runTick(tick); err != nil {
			return err
		}
		if m.Stopped() {
			break
		}
		<-ticker.C
	}

	return m.resetInputs()
}

func (m *Manager) runTick(tick int) error {
	for _, s := range m.sensors {
		vals, err := s.Sample(m.g)
		if err != nil {
			m.warn("sensor sample failed", log.Fields{"sensor": s.Name(), "error": err.Error()})
			continue
		}
		if s.Name() == "CPUPower" && len(vals) > 0 {
			m.recordPower(vals[0])
		}
	}
	for _, in := range m.inputs {
		if _, err := in.Sample(m.g); err != nil {
			m.warn("input sample failed", log.Fields{"input": in.Name(), "error": err.Error()})
		}
	}

	m.printTick(tick)

	for _, w := range m.readWires {
		if err := w.Transfer(m.g); err != nil {
			return err
		}
	}

	switch m.mode {
	case Mask:
		for _, w := range m.blockWires {
			if err := w.Transfer(m.g); err != nil {
				return err
			}
		}
		if err := m.runner.Run(m.g); err != nil {
			return err
		}
		if err := m.ctl.Run(m.g); err != nil {
			return err
		}
	case Sysid:
		if err := m.runSysid(m.g); err != nil {
			return err
		}
	}

	for _, w := range m.writeWires {
		if err := w.Transfer(m.g); err != nil {
			return err
		}
	}

	for _, in := range m.inputs {
		if err := in.Apply(m.g); err != nil {
			m.warn("input apply failed", log.Fields{"input": in.Name(), "error": err.Error()})
		}
	}

	return nil
}

// recordPower feeds one CPUPower sample into the rolling window and
// logs the resulting mean/stddev as a supplemental diagnostic line,
// separate from the fixed-format tick line printTick writes.
func (m *Manager) recordPower(watts float64) {
	m.powerTrace.Add(watts)
	summary, err := m.powerTrace.Describe()
	if err != nil {
		return
	}
	if m.chain != nil {
		m.chain.Log(telemetry.TickData, log.InfoLevel, log.Fields{
			"powerMean":   summary.Mean,
			"powerStdDev": summary.StdDev,
		}, "power trace")
	}
}

func (m *Manager) resetInputs() error {
	for _, in := range m.inputs {
		if err := in.Reset(m.g); err != nil {
			m.warn("input reset failed", log.Fields{"input": in.Name(), "error": err.Error()})
		}
	}
	return nil
}

func (m *Manager) warn(message string, fields log.Fields) {
	if m.chain != nil {
		m.chain.Log(telemetry.Console, log.WarnLevel, fields, message)
	}
}
