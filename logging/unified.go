package logging

import (
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/forksync/tui/theme"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// UnifiedLogger writes each entry twice: a styled line for the user and a
// structured entry for the log file.
type UnifiedLogger struct {
	component  string
	pretty     *PrettyLogger
	structured *logrus.Entry
}

// NewUnifiedLogger creates a unified logger for a component.
func NewUnifiedLogger(component string) *UnifiedLogger {
	return &UnifiedLogger{
		component:  component,
		pretty:     NewPrettyLogger(),
		structured: NewLogger(component),
	}
}

func (u *UnifiedLogger) entry(msg string, level logrus.Level, icon, status string) *LogEntry {
	fields := logrus.Fields{}
	if status != "" {
		fields["status"] = status
	}
	return &LogEntry{logger: u, msg: msg, level: level, fields: fields, icon: icon}
}

// Debug entries are muted in pretty output.
func (u *UnifiedLogger) Debug(msg string) *LogEntry {
	return u.entry(msg, logrus.DebugLevel, "", "")
}

func (u *UnifiedLogger) Info(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, "", "")
}

func (u *UnifiedLogger) Warn(msg string) *LogEntry {
	return u.entry(msg, logrus.WarnLevel, theme.Icons.Warning, "")
}

func (u *UnifiedLogger) Error(msg string) *LogEntry {
	return u.entry(msg, logrus.ErrorLevel, theme.Icons.Error, "")
}

// Success logs at info level with status=success.
func (u *UnifiedLogger) Success(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, theme.Icons.Success, "success")
}

// Progress logs at info level with status=progress.
func (u *UnifiedLogger) Progress(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, theme.Icons.Running, "progress")
}

// Skip logs at info level with status=skipped.
func (u *UnifiedLogger) Skip(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, theme.Icons.Skipped, "skipped")
}

// LogEntry accumulates options; Log writes it.
type LogEntry struct {
	logger     *UnifiedLogger
	msg        string
	level      logrus.Level
	fields     logrus.Fields
	icon       string
	prettyMsg  string
	prettyOnly bool
	structOnly bool
	noIcon     bool
}

// Field adds a structured field. Fields do not appear in pretty output.
func (e *LogEntry) Field(key string, value interface{}) *LogEntry {
	e.fields[key] = value
	return e
}

// Fields adds several structured fields.
func (e *LogEntry) Fields(fields map[string]interface{}) *LogEntry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// Err records err as the "error" field. A nil err is ignored.
func (e *LogEntry) Err(err error) *LogEntry {
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

func (e *LogEntry) Icon(icon string) *LogEntry {
	e.icon = icon
	return e
}

func (e *LogEntry) NoIcon() *LogEntry {
	e.noIcon = true
	return e
}

// Pretty replaces the styled output. The structured message is unchanged.
func (e *LogEntry) Pretty(styled string) *LogEntry {
	e.prettyMsg = styled
	return e
}

func (e *LogEntry) PrettyOnly() *LogEntry {
	e.prettyOnly = true
	return e
}

func (e *LogEntry) StructuredOnly() *LogEntry {
	e.structOnly = true
	return e
}

// Log writes the entry.
func (e *LogEntry) Log() {
	pretty := e.prettyOutput()
	if !e.structOnly {
		fmt.Fprintln(e.logger.pretty.Writer(), pretty)
	}
	if !e.prettyOnly {
		e.fields["pretty_text"] = ansiRegex.ReplaceAllString(pretty, "")
		e.logger.structured.WithFields(e.fields).Log(e.level, e.msg)
	}
}

func (e *LogEntry) prettyOutput() string {
	if e.prettyMsg != "" {
		return e.prettyMsg
	}

	output := e.msg
	if !e.noIcon {
		icon := e.icon
		if icon == "" {
			icon = theme.Icons.Bullet
		}
		output = icon + " " + e.msg
	}

	styles := e.logger.pretty.styles
	switch e.level {
	case logrus.WarnLevel:
		return styles.Warning.Render(output)
	case logrus.ErrorLevel:
		return styles.Error.Render(output)
	case logrus.DebugLevel:
		return styles.Key.Render(output)
	}
	switch e.icon {
	case theme.Icons.Success:
		return styles.Success.Render(output)
	case theme.Icons.Running:
		return styles.Info.Render(output)
	}
	return output
}

// Component returns the component name.
func (u *UnifiedLogger) Component() string {
	return u.component
}

// WithStructured returns the underlying logrus entry.
func (u *UnifiedLogger) WithStructured() *logrus.Entry {
	return u.structured
}

// WithPretty returns the underlying PrettyLogger.
func (u *UnifiedLogger) WithPretty() *PrettyLogger {
	return u.pretty
}
