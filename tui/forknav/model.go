// Package forknav is the interactive fork list. It is the single consumer
// of the engine's progress queue and the only owner of the fork list,
// statuses and selection.
package forknav

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/forksync/git"
	"github.com/grovetools/forksync/internal/engine"
	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/models"
	"github.com/grovetools/forksync/tui/keymap"
	"github.com/grovetools/forksync/tui/theme"
)

// Mode is the navigator's input mode.
type Mode int

const (
	ModeSelecting Mode = iota
	ModeSearch
	ModeStats
	ModeConfirm
	ModeError
	ModeSyncing
	ModeDone
)

func (m Mode) String() string {
	switch m {
	case ModeSelecting:
		return "selecting"
	case ModeSearch:
		return "search"
	case ModeStats:
		return "stats"
	case ModeConfirm:
		return "confirm"
	case ModeError:
		return "error"
	case ModeSyncing:
		return "syncing"
	case ModeDone:
		return "done"
	}
	return "unknown"
}

// StatusMessageTTL is how long footer messages stay visible.
const StatusMessageTTL = 3 * time.Second

// DefaultPollInterval is the queue drain and redraw cadence.
const DefaultPollInterval = 50 * time.Millisecond

// Engine starts background operations and exposes their progress queue.
type Engine interface {
	StartBatchSync(ctx context.Context, jobs []models.SyncJob, dryRun bool)
	StartSingle(ctx context.Context, kind engine.Kind, job models.SyncJob, dryRun bool)
	StartRefresh(ctx context.Context)
	Events() *engine.Queue
}

// Catalog keeps the cache in step with structural changes.
type Catalog interface {
	Forget(f models.Fork)
	Remember(f models.Fork)
}

// Browser opens a fork's page.
type Browser interface {
	Browse(ctx context.Context, fork models.Fork) error
}

// StatusReader reads working-tree status for the details pane.
type StatusReader interface {
	Status(ctx context.Context, path string) (*git.StatusInfo, error)
}

// Config wires the navigator. Engine is required; everything else is
// optional.
type Config struct {
	Forks        []models.Fork
	Cache        models.CacheStatus
	Engine       Engine
	Catalog      Catalog
	Browser      Browser
	Git          StatusReader
	ToolHome     string
	DryRun       bool
	AutoSync     bool
	AutoRefresh  bool
	Watch        bool
	PollInterval time.Duration
	// Editor overrides $EDITOR.
	Editor string
	// Keys remaps actions, for example {"select_all": ["A"]}.
	Keys keymap.Overrides
}

type modalAction int

const (
	actionSync modalAction = iota
	actionClone
	actionArchive
	actionDelete
)

func (a modalAction) verb() string {
	switch a {
	case actionClone:
		return "Clone"
	case actionArchive:
		return "Archive"
	case actionDelete:
		return "Delete"
	}
	return "Sync"
}

// confirmation is an open confirm modal. target is the fork key for
// single-fork actions.
type confirmation struct {
	action modalAction
	target string
	count  int
}

// popup is a queued actionable error.
type popup struct {
	key     string
	details models.ErrorDetails
}

// details holds what the details pane knows about a cloned fork.
type details struct {
	status *git.StatusInfo
	head   *git.HeadInfo
	err    error
}

// Model is the fork navigator state.
type Model struct {
	cfg    Config
	keys   KeyMap
	help   help.Model
	search textinput.Model
	theme  *theme.Theme
	log    *logrus.Entry

	// ctx scopes watchers and detail loads; work is handed to the engine
	// and survives quit.
	ctx    context.Context
	cancel context.CancelFunc
	work   context.Context

	forks    []models.Fork
	statuses []models.SyncStatus
	selected []bool
	visible  []int
	cursor   int
	offset   int

	mode     Mode
	prevMode Mode
	showHelp bool
	confirm  *confirmation
	button   int
	popups   []popup

	cache     models.CacheStatus
	message   string
	messageAt time.Time

	frames     []string
	frame      int
	frameAt    time.Time
	frameEvery time.Duration

	details      map[string]*details
	clonesChange chan struct{}

	width    int
	height   int
	now      func() time.Time
	quitting bool
}

// New creates a navigator over cfg.Forks.
func New(cfg Config) *Model {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	search := textinput.New()
	search.Placeholder = "owner/name"
	search.Prompt = "/ "
	search.CharLimit = 100

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		cfg:          cfg,
		keys:         DefaultKeyMap,
		help:         help.New(),
		search:       search,
		theme:        theme.Default(),
		log:          logging.NewLogger("tui"),
		ctx:          ctx,
		cancel:       cancel,
		work:         context.WithoutCancel(ctx),
		cache:        cfg.Cache,
		frames:       spinner.Dot.Frames,
		frameEvery:   spinner.Dot.FPS,
		details:      make(map[string]*details),
		clonesChange: make(chan struct{}, 1),
		width:        100,
		height:       30,
		now:          time.Now,
	}
	if unknown := keymap.Apply(&m.keys, cfg.Keys); len(unknown) > 0 {
		m.log.WithField("actions", unknown).Warn("Ignoring key overrides for unknown actions")
	}
	m.setForks(cfg.Forks)

	if cfg.AutoSync {
		for i, f := range m.forks {
			if f.IsCloned {
				m.selected[i] = true
			}
		}
	}
	return m
}

func (m *Model) setForks(forks []models.Fork) {
	m.forks = append([]models.Fork(nil), forks...)
	m.statuses = make([]models.SyncStatus, len(forks))
	for i := range m.statuses {
		m.statuses[i] = models.Pending()
	}
	m.selected = make([]bool, len(forks))
	m.updateSearch()
}

// Init starts the poll loop and any startup work.
func (m *Model) Init() tea.Cmd {
	if m.cfg.AutoSync && m.selectedCount() > 0 {
		m.startBatch()
	}
	if m.cfg.AutoRefresh && m.cache.Kind == models.CacheStale {
		m.startRefresh()
	}
	if m.cfg.Watch {
		m.startWatcher()
	}
	return tea.Batch(m.tick(), m.loadDetails())
}

// Mode returns the current input mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// Forks returns the current fork list.
func (m *Model) Forks() []models.Fork {
	return m.forks
}

// Statuses returns the current statuses, parallel to Forks.
func (m *Model) Statuses() []models.SyncStatus {
	return m.statuses
}

// Summary counts outcomes among selected forks.
func (m *Model) Summary() models.RunSummary {
	return models.Summarize(m.statuses, m.selected)
}

// Close stops background watchers. Workers already started run to
// completion; their events are ignored.
func (m *Model) Close() {
	m.cancel()
}

func (m *Model) selectedCount() int {
	n := 0
	for _, s := range m.selected {
		if s {
			n++
		}
	}
	return n
}

// currentIndex returns the fork index under the cursor.
func (m *Model) currentIndex() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return 0, false
	}
	return m.visible[m.cursor], true
}

func (m *Model) current() (models.Fork, bool) {
	i, ok := m.currentIndex()
	if !ok {
		return models.Fork{}, false
	}
	return m.forks[i], true
}

func (m *Model) indexOf(key string) (int, bool) {
	return models.ResolveIndex(m.forks, -1, key)
}

func (m *Model) showMessage(msg string) {
	m.message = msg
	m.messageAt = m.now()
}

func (m *Model) editor() string {
	if m.cfg.Editor != "" {
		return m.cfg.Editor
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vim"
}
