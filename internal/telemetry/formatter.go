package telemetry

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
)

// Formatter renders a logrus entry as a single colorized line:
//
//	[15:04:05.000] INFO  power=118.30W tick=42 controller settled
//
// Color is chosen by level, matching the teacher's ElektronFormatter,
// and disabled automatically when stdout isn't a terminal (fatih/color
// handles that detection).
type Formatter struct {
	TimestampFormat string
}

func (f *Formatter) levelColor(level log.Level) *color.Color {
	switch level {
	case log.DebugLevel, log.TraceLevel:
		return color.New(color.FgCyan)
	case log.InfoLevel:
		return color.New(color.FgGreen)
	case log.WarnLevel:
		return color.New(color.FgYellow)
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	ts := f.TimestampFormat
	if ts == "" {
		ts = "15:04:05.000"
	}
	c := f.levelColor(entry.Level)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[%s] ", entry.Time.Format(ts))
	c.Fprintf(&buf, "%-5s ", levelTag(entry.Level))

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s=%v ", k, entry.Data[k])
	}

	buf.WriteString(entry.Message)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func levelTag(level log.Level) string {
	switch level {
	case log.DebugLevel:
		return "DEBUG"
	case log.InfoLevel:
		return "INFO"
	case log.WarnLevel:
		return "WARN"
	case log.ErrorLevel:
		return "ERROR"
	case log.FatalLevel:
		return "FATAL"
	default:
		return "TRACE"
	}
}
