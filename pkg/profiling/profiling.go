// Package profiling adds CPU/heap profiling and a startup timing summary
// to a cobra command.
package profiling

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

// Span is one timed step.
type Span struct {
	Name     string
	Duration time.Duration
}

// Profiler owns the profiling flags and collected spans.
type Profiler struct {
	cpuPath string
	memPath string
	timing  bool

	cpuFile *os.File
	start   time.Time

	mu    sync.Mutex
	spans []Span
}

// Default is the process-wide profiler used by Track.
var Default = New()

// New creates a disabled profiler.
func New() *Profiler {
	return &Profiler{}
}

// AddFlags registers --cpu-profile, --mem-profile and --timing.
func (p *Profiler) AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&p.cpuPath, "cpu-profile", "", "Write a CPU profile to this file")
	flags.StringVar(&p.memPath, "mem-profile", "", "Write a heap profile to this file on exit")
	flags.BoolVar(&p.timing, "timing", false, "Print how long startup steps took")
	_ = flags.MarkHidden("cpu-profile")
	_ = flags.MarkHidden("mem-profile")
}

// Enabled reports whether spans are being collected.
func (p *Profiler) Enabled() bool {
	return p.timing
}

// PreRun starts profiling. Use as PersistentPreRunE.
func (p *Profiler) PreRun(cmd *cobra.Command, args []string) error {
	p.start = time.Now()
	if p.cpuPath == "" {
		return nil
	}
	f, err := os.Create(p.cpuPath)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	p.cpuFile = f
	return nil
}

// PostRun writes profiles and the timing summary. Use as
// PersistentPostRun.
func (p *Profiler) PostRun(cmd *cobra.Command, args []string) {
	out := cmd.ErrOrStderr()

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		p.cpuFile = nil
		fmt.Fprintf(out, "CPU profile written to %s\n", p.cpuPath)
	}

	if p.memPath != "" {
		if err := writeHeapProfile(p.memPath); err != nil {
			fmt.Fprintln(out, err)
		} else {
			fmt.Fprintf(out, "Heap profile written to %s\n", p.memPath)
		}
	}

	if p.timing {
		p.Summarize(out)
	}
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create heap profile: %w", err)
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write heap profile: %w", err)
	}
	return nil
}

// Track starts a span and returns the func that ends it:
//
//	defer profiling.Track("load forks")()
func (p *Profiler) Track(name string) func() {
	if !p.timing {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.spans = append(p.spans, Span{Name: name, Duration: time.Since(start)})
	}
}

// Spans returns the finished spans in completion order.
func (p *Profiler) Spans() []Span {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Span(nil), p.spans...)
}

// Summarize prints one line per span and the total.
func (p *Profiler) Summarize(w io.Writer) {
	spans := p.Spans()
	width := len("total")
	for _, s := range spans {
		if len(s.Name) > width {
			width = len(s.Name)
		}
	}

	fmt.Fprintln(w, "Timing:")
	for _, s := range spans {
		fmt.Fprintf(w, "  %-*s  %s\n", width, s.Name, s.Duration.Round(time.Microsecond))
	}
	if !p.start.IsZero() {
		fmt.Fprintf(w, "  %-*s  %s\n", width, "total", time.Since(p.start).Round(time.Microsecond))
	}
}

// Track starts a span on Default.
func Track(name string) func() {
	return Default.Track(name)
}
