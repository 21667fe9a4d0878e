package fixtures

import (
	"fmt"
	"sync"

	"github.com/dogmatiq/dodeca/logging"
)

// LogLine is a single message captured by a LoggerStub.
type LogLine struct {
	Message string
	IsDebug bool
}

// LoggerStub is an implementation of logging.Logger that captures log lines
// in memory.
//
// It is safe for concurrent use.
type LoggerStub struct {
	CaptureDebug bool

	m     sync.Mutex
	lines []LogLine
}

var _ logging.Logger = (*LoggerStub)(nil)

// Log writes an application log message formatted according to a format
// specifier.
func (l *LoggerStub) Log(f string, v ...interface{}) {
	l.LogString(fmt.Sprintf(f, v...))
}

// LogString writes a pre-formatted application log message.
func (l *LoggerStub) LogString(s string) {
	l.append(LogLine{s, false})
}

// Debug writes a debug log message formatted according to a format
// specifier.
func (l *LoggerStub) Debug(f string, v ...interface{}) {
	l.DebugString(fmt.Sprintf(f, v...))
}

// DebugString writes a pre-formatted debug log message.
func (l *LoggerStub) DebugString(s string) {
	if l.CaptureDebug {
		l.append(LogLine{s, true})
	}
}

// IsDebug returns true if debug messages are captured.
func (l *LoggerStub) IsDebug() bool {
	return l.CaptureDebug
}

// Messages returns the application log messages.
func (l *LoggerStub) Messages() []string {
	return l.filter(false)
}

// Debugs returns the debug log messages.
func (l *LoggerStub) Debugs() []string {
	return l.filter(true)
}

// Lines returns all captured log lines.
func (l *LoggerStub) Lines() []LogLine {
	l.m.Lock()
	defer l.m.Unlock()

	return append([]LogLine(nil), l.lines...)
}

func (l *LoggerStub) append(line LogLine) {
	l.m.Lock()
	defer l.m.Unlock()

	l.lines = append(l.lines, line)
}

func (l *LoggerStub) filter(debug bool) []string {
	var messages []string

	for _, line := range l.Lines() {
		if line.IsDebug == debug {
			messages = append(messages, line.Message)
		}
	}

	return messages
}
