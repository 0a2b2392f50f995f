package input

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/spdfg/maya/internal/graph"
	"github.com/spdfg/maya/internal/vector"
)

// PowerBalloon reads and writes the shared-memory files of a
// companion power-balloon application: a user-space process that busy-
// spins a configurable fraction of the time to add controllable,
// synthetic load. The balloon level and its ceiling are plain text
// files under /dev/shm, in steps of 2.
const (
	powerBalloonFile    = "powerBalloon.txt"
	powerBalloonMaxFile = "powerBalloonMax.txt"
	powerBalloonStep    = 2
)

// DefaultShmBase is the real shared-memory mount used by the companion
// balloon process.
const DefaultShmBase = "/dev/shm"

// PowerBalloon drives the balloon level file.
type PowerBalloon struct {
	Base

	levelFile string
}

// NewPowerBalloon reads the balloon's maximum level from base (normally
// DefaultShmBase) and registers ports on g.
func NewPowerBalloon(g *graph.Graph, name string, base string) (*PowerBalloon, error) {
	if base == "" {
		base = DefaultShmBase
	}
	maxFile := filepath.Join(base, powerBalloonMaxFile)
	maxLevel, err := readUintFile(maxFile)
	if err != nil {
		return nil, errors.Wrapf(err, "%s does not exist", maxFile)
	}

	var allowed vector.Vector
	for v := 0.0; v <= maxLevel; v += powerBalloonStep {
		allowed = append(allowed, v)
	}

	pb := &PowerBalloon{
		Base:      NewBase(g, name),
		levelFile: filepath.Join(base, powerBalloonFile),
	}
	pb.SetAllowedValues(allowed)

	if err := pb.SetMin(g); err != nil {
		return nil, err
	}
	if _, err := pb.Sample(g); err != nil {
		return nil, err
	}
	return pb, nil
}

// Sample reads the balloon's current level.
func (pb *PowerBalloon) Sample(g *graph.Graph) (vector.Vector, error) {
	raw, err := os.ReadFile(pb.levelFile)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", pb.levelFile)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", pb.levelFile)
	}
	return pb.Publish(g, vector.Vector{v})
}

// Apply quantizes any pending request and writes it, skipping the write
// if it matches the currently observed level.
func (pb *PowerBalloon) Apply(g *graph.Graph) error {
	changed, err := pb.pullRequested(g)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if _, err := pb.Sample(g); err != nil {
		return err
	}
	if uint64(pb.Values()[0]) == uint64(pb.actualWriteValue) {
		return nil
	}
	text := fmt.Sprintf("%d\n", uint64(pb.actualWriteValue))
	if err := os.WriteFile(pb.levelFile, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", pb.levelFile)
	}
	return nil
}

// Reset deflates the balloon, writing its minimum level to the host
// shm file directly rather than only queuing a pending graph value, so
// a shutdown actually leaves the companion process idle.
func (pb *PowerBalloon) Reset(g *graph.Graph) error {
	if err := pb.SetMin(g); err != nil {
		return err
	}
	text := fmt.Sprintf("%d\n", uint64(pb.Min()))
	if err := os.WriteFile(pb.levelFile, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "resetting %s", pb.levelFile)
	}
	return nil
}
