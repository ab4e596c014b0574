package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.True(t, strings.HasPrefix(info.String(), "Version:\t"+Version))
}

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"dev build", Info{Version: "dev", Commit: "none"}, "dev"},
		{"empty commit", Info{Version: "v1.0.0"}, "v1.0.0"},
		{"long commit", Info{Version: "v1.2.3", Commit: "0123456789abcdef"}, "v1.2.3 (0123456)"},
		{"short commit", Info{Version: "v1.2.3", Commit: "abc"}, "v1.2.3 (abc)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Short())
		})
	}
}
