package logging

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/forksync/tui/theme"
)

func newTestUnified(t *testing.T) (*UnifiedLogger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	isolate(t)

	var pretty, structured bytes.Buffer
	u := NewUnifiedLogger("unified-test")
	u.pretty.WithWriter(&pretty)
	u.structured.Logger.SetOutput(&structured)
	u.structured.Logger.SetFormatter(&TextFormatter{Config: FormatConfig{DisableTimestamp: true}})
	u.structured.Logger.SetLevel(logrus.DebugLevel)
	return u, &pretty, &structured
}

func TestUnifiedWritesBothOutputs(t *testing.T) {
	u, pretty, structured := newTestUnified(t)

	u.Success("Synced alice/widget").Field("fork", "alice/widget").Log()

	assert.Contains(t, pretty.String(), theme.Icons.Success)
	assert.Contains(t, pretty.String(), "Synced alice/widget")
	assert.NotContains(t, pretty.String(), "fork=")

	assert.Contains(t, structured.String(), "Synced alice/widget")
	assert.Contains(t, structured.String(), "fork=alice/widget")
	assert.Contains(t, structured.String(), "status=success")
}

func TestUnifiedPrettyOnlyAndStructuredOnly(t *testing.T) {
	u, pretty, structured := newTestUnified(t)

	u.Info("only pretty").PrettyOnly().Log()
	u.Info("only structured").StructuredOnly().Log()

	assert.Contains(t, pretty.String(), "only pretty")
	assert.NotContains(t, pretty.String(), "only structured")
	assert.Contains(t, structured.String(), "only structured")
	assert.NotContains(t, structured.String(), "only pretty")
}

func TestUnifiedEntryOptions(t *testing.T) {
	u, pretty, structured := newTestUnified(t)

	u.Warn("careful").
		Fields(map[string]interface{}{"a": 1, "b": "two"}).
		Err(stderrors.New("boom")).
		Err(nil).
		Log()
	u.Info("plain").NoIcon().Log()
	u.Info("custom").Icon(">>").Log()
	u.Error("styled").Pretty("CUSTOM OUTPUT").Log()

	out := pretty.String()
	assert.Contains(t, out, theme.Icons.Warning+" careful")
	assert.Contains(t, out, "plain")
	assert.NotContains(t, out, theme.Icons.Bullet+" plain")
	assert.Contains(t, out, ">> custom")
	assert.Contains(t, out, "CUSTOM OUTPUT")

	s := structured.String()
	assert.Contains(t, s, "error=boom")
	assert.Contains(t, s, "a=1")
	assert.Contains(t, s, "styled")
	assert.Contains(t, s, "pretty_text=CUSTOM OUTPUT")
}

func TestUnifiedLevels(t *testing.T) {
	u, _, _ := newTestUnified(t)

	tests := []struct {
		entry  *LogEntry
		level  logrus.Level
		status interface{}
	}{
		{u.Debug("d"), logrus.DebugLevel, nil},
		{u.Info("i"), logrus.InfoLevel, nil},
		{u.Warn("w"), logrus.WarnLevel, nil},
		{u.Error("e"), logrus.ErrorLevel, nil},
		{u.Success("s"), logrus.InfoLevel, "success"},
		{u.Progress("p"), logrus.InfoLevel, "progress"},
		{u.Skip("k"), logrus.InfoLevel, "skipped"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, tt.entry.level, tt.entry.msg)
		assert.Equal(t, tt.status, tt.entry.fields["status"], tt.entry.msg)
	}
}

func TestUnifiedAccessors(t *testing.T) {
	u, _, _ := newTestUnified(t)
	assert.Equal(t, "unified-test", u.Component())
	require.NotNil(t, u.WithStructured())
	require.NotNil(t, u.WithPretty())
}

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrettyLogger().WithWriter(&buf)

	p.Success("done")
	p.WarnPretty("hmm")
	p.ErrorPretty("failed", stderrors.New("exit 1"))
	p.Field("Forks", 12)
	p.Path("Cache", "/tmp/forks.db")
	p.Divider()
	p.Blank()
	p.InfoPretty("info")

	out := buf.String()
	for _, want := range []string{"done", "hmm", "failed", "exit 1", "Forks", "12", "/tmp/forks.db", "─", "info"} {
		assert.Contains(t, out, want)
	}
}
