package command

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/grovetools/forksync/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRepoSlug(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid slug", "alice/widget", false},
		{"dots and underscores", "alice/my_repo.go", false},
		{"hyphenated owner", "some-org/tool", false},
		{"missing slash", "widget", true},
		{"empty name", "alice/", true},
		{"dot-dot name", "alice/..", true},
		{"owner with underscore", "bad_owner/x", true},
		{"owner leading hyphen", "-alice/widget", true},
		{"shell metacharacters", "alice/w;rm", true},
		{"nested path", "alice/widget/extra", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRepoSlug(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRepoSlug(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid path", "/path/to/file.txt", false},
		{"relative path", "relative/path.txt", false},
		{"directory traversal", "../etc/passwd", true},
		{"command injection semicolon", "file.txt; rm -rf /", true},
		{"command injection pipe", "file.txt | cat", true},
		{"command injection dollar", "$(whoami)", true},
		{"command injection backtick", "`whoami`", true},
		{"empty path", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGitRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple branch", "main", false},
		{"remote ref", "origin/main", false},
		{"feature branch", "feature/x-1.2", false},
		{"range syntax", "origin/main..HEAD", false},
		{"option injection", "--upload-pack=evil", true},
		{"space", "main branch", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGitRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateGitRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilderValidate(t *testing.T) {
	sb := NewSafeBuilder()

	assert.NoError(t, sb.Validate("repoSlug", "alice/widget"))
	assert.Error(t, sb.Validate("repoSlug", "widget"))
	assert.Error(t, sb.Validate("unknownType", "value"))
}

func TestBuildKeepsCallerDeadline(t *testing.T) {
	sb := NewSafeBuilder()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd, err := sb.Build(ctx, "git", "status")
	require.NoError(t, err)
	defer cmd.Release()

	assert.LessOrEqual(t, cmd.timeout, 5*time.Second)

	cmd2, err := sb.Build(context.Background(), "git", "status")
	require.NoError(t, err)
	defer cmd2.Release()
	assert.Equal(t, DefaultTimeout, cmd2.timeout)
}

func TestBuildRejectsEmptyName(t *testing.T) {
	_, err := NewSafeBuilder().Build(context.Background(), "")
	assert.Error(t, err)
}

func TestCommandWithTimeoutOnlyNarrows(t *testing.T) {
	cmd, err := NewSafeBuilder().Build(context.Background(), "git")
	require.NoError(t, err)
	defer cmd.Release()

	cmd.WithTimeout(time.Hour)
	assert.Equal(t, DefaultTimeout, cmd.timeout)

	cmd.WithTimeout(time.Second)
	assert.Equal(t, time.Second, cmd.timeout)
}

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	sb := NewSafeBuilder()
	res, err := sb.Run(context.Background(), "", "sh", "-c", "echo out; echo err 1>&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())

	failure := res.Err("sh", "-c", "exit 3")
	require.Error(t, failure)
	assert.True(t, errors.Is(failure, errors.ErrCodeCommandFailed))
	assert.Equal(t, "err\n", errors.Stderr(failure))
}

func TestRunMapsDeadlineToTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	sb := NewSafeBuilder().WithDefaultTimeout(100 * time.Millisecond)
	_, err := sb.Run(context.Background(), "", "sleep", "5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandTimeout))
}

func TestRunMissingBinary(t *testing.T) {
	_, err := NewSafeBuilder().Run(context.Background(), "", "forksync-definitely-not-installed")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandNotFound))
}

func TestRunChecked(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	_, err := RunChecked(context.Background(), NewSafeBuilder(), "", "sh", "-c", "exit 1")
	assert.True(t, errors.Is(err, errors.ErrCodeCommandFailed))

	res, err := RunChecked(context.Background(), NewSafeBuilder(), "", "sh", "-c", "printf ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Stdout)
}
