package cli

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	os.Setenv("FORKSYNC_LOG_FILE", "off")
	os.Setenv("FORKSYNC_THEME", "terminal")
	os.Exit(m.Run())
}
