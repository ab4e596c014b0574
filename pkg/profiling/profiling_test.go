package profiling

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackDisabled(t *testing.T) {
	p := New()
	p.Track("load")()
	assert.Empty(t, p.Spans())
	assert.False(t, p.Enabled())
}

func TestTimingSummary(t *testing.T) {
	p := New()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	p.AddFlags(cmd)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--timing"}))
	require.True(t, p.Enabled())

	require.NoError(t, p.PreRun(cmd, nil))
	p.Track("open cache")()
	p.Track("load forks")()

	spans := p.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "open cache", spans[0].Name)
	assert.Equal(t, "load forks", spans[1].Name)

	var buf bytes.Buffer
	cmd.SetErr(&buf)
	p.PostRun(cmd, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Timing:", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  open cache  "))
	assert.True(t, strings.HasPrefix(lines[3], "  total       "))
}

func TestProfilesWritten(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.out")
	mem := filepath.Join(dir, "mem.out")

	p := New()
	cmd := &cobra.Command{Use: "test"}
	p.AddFlags(cmd)
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--cpu-profile", cpu, "--mem-profile", mem}))

	require.NoError(t, p.PreRun(cmd, nil))
	var buf bytes.Buffer
	cmd.SetErr(&buf)
	p.PostRun(cmd, nil)

	for _, path := range []string{cpu, mem} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
	assert.Contains(t, buf.String(), "CPU profile written to "+cpu)
	assert.Contains(t, buf.String(), "Heap profile written to "+mem)
}
