package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every path and config lookup at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("FORKSYNC_HOME", home)
	t.Setenv("FORKSYNC_CONFIG", "")
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFile, "")
	Reset()
	t.Cleanup(Reset)
	return home
}

func TestNewLoggerIsCachedPerComponent(t *testing.T) {
	isolate(t)

	a := NewLogger("engine")
	b := NewLogger("engine")
	c := NewLogger("catalog")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "engine", a.Data["component"])
}

func TestNewLoggerWritesToStateDir(t *testing.T) {
	home := isolate(t)

	log := NewLogger("reconcile")
	log.Info("Synced fork")

	path := filepath.Join(home, "state", "logs", "reconcile-"+time.Now().Format("2006-01-02")+".log")
	assert.Equal(t, path, LogFile("reconcile"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Synced fork")
	assert.Contains(t, string(data), "[INFO]")
}

func TestLogFileEnv(t *testing.T) {
	isolate(t)

	custom := filepath.Join(t.TempDir(), "custom.log")
	t.Setenv(EnvFile, custom)
	assert.Equal(t, custom, LogFile("x"))

	t.Setenv(EnvFile, "off")
	assert.Empty(t, LogFile("x"))
}

func TestLevelFromEnvAndConfig(t *testing.T) {
	home := isolate(t)

	configDir := filepath.Join(home, "config")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte("logging:\n  level: warn\n  format:\n    preset: json\n"), 0o644))

	log := NewLogger("from-config")
	assert.Equal(t, logrus.WarnLevel, log.Logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Logger.Formatter)

	t.Setenv(EnvLevel, "debug")
	log = NewLogger("from-env")
	assert.Equal(t, logrus.DebugLevel, log.Logger.GetLevel())

	t.Setenv(EnvLevel, "nonsense")
	t.Setenv("FORKSYNC_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))
	log = NewLogger("bad-level")
	assert.Equal(t, logrus.InfoLevel, log.Logger.GetLevel())
}

func TestSetLevelAppliesToExistingAndNew(t *testing.T) {
	isolate(t)

	before := NewLogger("before")
	SetLevel(logrus.DebugLevel)
	after := NewLogger("after")

	assert.Equal(t, logrus.DebugLevel, before.Logger.GetLevel())
	assert.Equal(t, logrus.DebugLevel, after.Logger.GetLevel())
}

func TestReportCallerEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvCaller, "true")

	assert.True(t, NewLogger("caller").Logger.ReportCaller)
}

func TestLogToStderrPolicy(t *testing.T) {
	t.Setenv(EnvDebug, "")
	assert.True(t, logToStderr("always", logrus.InfoLevel))
	assert.False(t, logToStderr("never", logrus.DebugLevel))
	assert.True(t, logToStderr("auto", logrus.DebugLevel))

	t.Setenv(EnvDebug, "1")
	assert.True(t, logToStderr("", logrus.InfoLevel))
}

func TestSetStderrOutput(t *testing.T) {
	var buf bytes.Buffer
	prev := SetStderrOutput(&buf)
	defer SetStderrOutput(prev)

	_, err := stderrSink.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", buf.String())
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		fields  logrus.Fields
		level   logrus.Level
		caller  bool
		want    []string
		notWant []string
	}{
		{
			name:   "full",
			fields: logrus.Fields{"component": "engine", "fork": "alice/widget"},
			level:  logrus.InfoLevel,
			want:   []string{"2025-01-02 03:04:05", "[INFO]", "engine", "sync started", "fork=alice/widget"},
		},
		{
			name:    "warning shortened",
			fields:  logrus.Fields{},
			level:   logrus.WarnLevel,
			want:    []string{"[WARN]"},
			notWant: []string{"WARNING"},
		},
		{
			name:    "no timestamp or component",
			config:  FormatConfig{DisableTimestamp: true, DisableComponent: true},
			fields:  logrus.Fields{"component": "engine"},
			level:   logrus.ErrorLevel,
			want:    []string{"[ERROR] sync started"},
			notWant: []string{"2025-01-02", "engine"},
		},
		{
			name:   "caller",
			fields: logrus.Fields{},
			level:  logrus.InfoLevel,
			caller: true,
			want:   []string{"[engine.go:42 engine.run]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Logger:  logrus.New(),
				Data:    tt.fields,
				Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
				Level:   tt.level,
				Message: "sync started",
			}
			if tt.caller {
				entry.Logger.SetReportCaller(true)
				entry.Caller = &runtimeFrame
			}

			out, err := (&TextFormatter{Config: tt.config}).Format(entry)
			require.NoError(t, err)
			s := string(out)
			assert.True(t, strings.HasSuffix(s, "\n"))
			for _, w := range tt.want {
				assert.Contains(t, s, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, s, nw)
			}
		})
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Data:    logrus.Fields{"b": 2, "a": 1, "c": 3},
		Level:   logrus.InfoLevel,
		Message: "m",
	}
	out, err := (&TextFormatter{Config: FormatConfig{DisableTimestamp: true}}).Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "m a=1 b=2 c=3")
}
