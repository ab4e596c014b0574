package logging

import "runtime"

var runtimeFrame = runtime.Frame{
	File:     "/src/internal/engine/engine.go",
	Line:     42,
	Function: "github.com/grovetools/forksync/internal/engine.run",
}
