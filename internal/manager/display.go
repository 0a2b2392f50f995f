package manager

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/telemetry"
)

func (m *Manager) displayPorts() []graph.PortID {
	ports := make([]graph.PortID, 0, len(m.sensors)+len(m.inputs)+1)
	for _, s := range m.sensors {
		ports = append(ports, s.Port())
	}
	for _, in := range m.inputs {
		ports = append(ports, in.Port())
	}
	if m.mode == Mask {
		ports = append(ports, m.ctl.CurrOutputTargetPort())
	}
	return ports
}

// printHeader writes the single startup header line naming every pin
// that will appear on each tick line, in the same order.
func (m *Manager) printHeader() {
	ports := m.displayPorts()
	var names []string
	for i, port := range ports {
		pins, _ := m.g.PinNames(port)
		if m.mode == Mask && i == len(ports)-1 {
			for _, p := range pins {
				names = append(names, "Target@"+p)
			}
			continue
		}
		names = append(names, pins...)
	}
	line := strings.Join(names, " ")
	fmt.Println(line)
	if m.chain != nil {
		m.chain.Log(telemetry.TickData, log.InfoLevel, nil, line)
	}
}

// printTick writes one line of fixed-precision values for the current
// tick, in header order, reflecting values sampled earlier this tick
// (spec.md §4.7 step 2: display happens before any wire transfer or
// controller/planner run, so in Mask mode the target values shown are
// the ones the previous tick's controller used, not this tick's).
func (m *Manager) printTick(tick int) {
	var fields []string
	for _, port := range m.displayPorts() {
		vals, err := m.g.TransmitAll(port)
		if err != nil {
			continue
		}
		for _, v := range vals {
			fields = append(fields, fmt.Sprintf("%.4f", v))
		}
	}
	line := strings.Join(fields, " ")
	fmt.Println(line)
	if m.chain != nil {
		m.chain.Log(telemetry.TickData, log.InfoLevel, log.Fields{"tick": tick}, line)
	}
}
