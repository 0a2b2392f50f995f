package telemetry

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Kind identifies which logger in the chain a call is addressed to.
type Kind int

const (
	Console Kind = iota
	TickData
)

// Logger is one link in the logging chain of responsibility. A call to
// Log is handled by every logger in the chain whose Kind matches
// kind, then forwarded to next regardless of match.
type Logger interface {
	SetNext(next Logger)
	Log(kind Kind, level log.Level, fields log.Fields, message string)
}

// base holds the state common to every link in the chain: which Kind
// it answers to, the shared logrus instance, and the next link.
type base struct {
	kind   Kind
	logger *log.Logger
	next   Logger
}

func (b *base) SetNext(next Logger) { b.next = next }

func (b *base) forward(kind Kind, level log.Level, fields log.Fields, message string) {
	if b.next != nil {
		b.next.Log(kind, level, fields, message)
	}
}

// ConsoleLogger writes Console-kind messages (warnings and status
// lines) to stdout in human-readable form.
type ConsoleLogger struct {
	base
	enabled bool
}

// Log implements Logger.
func (c *ConsoleLogger) Log(kind Kind, level log.Level, fields log.Fields, message string) {
	if kind == Console && c.enabled {
		c.logger.WithFields(fields).Log(level, message)
	}
	c.forward(kind, level, fields, message)
}

// TickDataLogger appends TickData-kind records (the header, one tick
// line per tick, and the rolling power-trace summary) to a file, for
// offline analysis of a run's trajectory.
type TickDataLogger struct {
	base
	enabled bool
	file    *os.File
}

// Log implements Logger.
func (t *TickDataLogger) Log(kind Kind, level log.Level, fields log.Fields, message string) {
	if kind == TickData && t.enabled && t.file != nil {
		entry := log.NewEntry(t.logger)
		entry.Logger.SetOutput(t.file)
		entry.WithFields(fields).Log(level, message)
		entry.Logger.SetOutput(os.Stdout)
	}
	t.forward(kind, level, fields, message)
}

// Chain is the constructed logging chain plus the run identity that
// named its log directory.
type Chain struct {
	RunID  uuid.UUID
	LogDir string

	head Logger
}

// Log routes a message to every logger in the chain matching kind.
func (c *Chain) Log(kind Kind, level log.Level, fields log.Fields, message string) {
	if c.head == nil {
		return
	}
	c.head.Log(kind, level, fields, message)
}

// Build wires a ConsoleLogger -> TickDataLogger chain per cfg, rooted
// at a freshly created, UUID-tagged log directory under baseDir.
func Build(cfg Config, baseDir string) (*Chain, error) {
	runID := uuid.New()
	logDir := filepath.Join(baseDir, "run-"+runID.String())
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating log directory %s", logDir)
	}

	consoleLogrus := log.New()
	consoleLogrus.SetFormatter(&Formatter{})
	consoleLogrus.SetOutput(os.Stdout)
	if lvl, err := log.ParseLevel(cfg.Console.MinLevel); err == nil {
		consoleLogrus.SetLevel(lvl)
	}
	console := &ConsoleLogger{
		base:    base{kind: Console, logger: consoleLogrus},
		enabled: cfg.Console.Enabled,
	}

	tickLogrus := log.New()
	tickLogrus.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	var tickFile *os.File
	if cfg.TickData.Enabled {
		path := filepath.Join(logDir, "tickdata"+cfg.TickData.FilenameExtension)
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrapf(err, "creating tick-data log %s", path)
		}
		tickFile = f
	}
	tickData := &TickDataLogger{
		base:    base{kind: TickData, logger: tickLogrus},
		enabled: cfg.TickData.Enabled,
		file:    tickFile,
	}

	console.SetNext(tickData)

	return &Chain{RunID: runID, LogDir: logDir, head: console}, nil
}

// Close releases any files the chain opened.
func (c *Chain) Close() error {
	if td, ok := c.head.(*ConsoleLogger); ok {
		if next, ok := td.next.(*TickDataLogger); ok && next.file != nil {
			return next.file.Close()
		}
	}
	return nil
}
