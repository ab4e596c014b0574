package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireGit skips the test if git is not available
func RequireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// InitGitRepo initializes a git repository with one commit on main.
func InitGitRepo(t *testing.T, dir string) {
	t.Helper()

	RunGitCommand(t, dir, "init", "-q")
	configureIdentity(t, dir)
	CreateCommit(t, dir, "README.md", "# Test Project\n")

	// Ensure we have a main branch (rename from master if needed)
	cmd := exec.Command("git", "branch", "-M", "main")
	cmd.Dir = dir
	_ = cmd.Run()
}

// InitBareRepo creates a bare repository usable as a remote.
func InitBareRepo(t *testing.T, dir string) {
	t.Helper()

	RunGitCommand(t, dir, "init", "-q", "--bare", "--initial-branch=main")
}

// CloneRepo clones src into dst and configures a commit identity.
func CloneRepo(t *testing.T, src, dst string) {
	t.Helper()

	RunGitCommand(t, filepath.Dir(dst), "clone", "-q", src, dst)
	configureIdentity(t, dst)
}

// CreateBranch creates and checks out a new git branch
func CreateBranch(t *testing.T, dir, branch string) {
	t.Helper()

	RunGitCommand(t, dir, "checkout", "-q", "-b", branch)
}

// RunGitCommand runs a git command in the given directory
func RunGitCommand(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s failed with output: %s", strings.Join(args, " "), string(output))
}

// GitOutput runs a git command and returns its trimmed stdout.
func GitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	require.NoError(t, err, "git %s failed", strings.Join(args, " "))
	return strings.TrimSpace(string(output))
}

// CreateCommit creates a file and commits it
func CreateCommit(t *testing.T, dir, filename, content string) {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0600))

	RunGitCommand(t, dir, "add", filename)
	RunGitCommand(t, dir, "commit", "-q", "-m", "Add "+filename)
}

func configureIdentity(t *testing.T, dir string) {
	t.Helper()

	RunGitCommand(t, dir, "config", "user.name", "Test User")
	RunGitCommand(t, dir, "config", "user.email", "test@example.com")
	RunGitCommand(t, dir, "config", "commit.gpgsign", "false")
}
