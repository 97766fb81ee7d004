// Package lifecycle wires the scanner, translation store, hooks and
// redirector together behind the four loader notifications.
package lifecycle

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"eternalredirect/config"
	"eternalredirect/hook"
	"eternalredirect/process"
	"eternalredirect/redirect"
	"eternalredirect/scanner"
	"eternalredirect/translation"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Binder builds the original-function table once hooks are installed.
// Functions for slots that are not attached must be left nil.
type Binder func(set *hook.Set) redirect.Originals

// Module is the loaded translation module
type Module struct {
	cfg   config.Config
	image process.Image
	set   *hook.Set
	bind  Binder
	log   *logger.Logger

	mu         sync.Mutex
	redirector atomic.Pointer[redirect.Redirector]
	attached   atomic.Bool
	threads    atomic.Int64
}

// New creates a module. Nothing happens until ProcessAttach.
func New(cfg config.Config, image process.Image, installer hook.Installer, detours Detours, bind Binder) *Module {
	return &Module{
		cfg:   cfg,
		image: image,
		set:   hook.NewSet(installer, Slots(detours)...),
		bind:  bind,
		log:   logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "eternal")),
	}
}

// Redirector returns the active redirector, or nil before attach completes
func (m *Module) Redirector() *redirect.Redirector {
	return m.redirector.Load()
}

// Hooks returns the hook set
func (m *Module) Hooks() *hook.Set {
	return m.set
}

// Attached reports whether ProcessAttach has completed
func (m *Module) Attached() bool {
	return m.attached.Load()
}

// Threads returns the number of threads seen attaching minus detaching
func (m *Module) Threads() int64 {
	return m.threads.Load()
}

func (m *Module) loadStore() *translation.Store {
	m.log.Infoln("### Loading translations...")

	store, err := translation.Load(m.cfg.TranslationsPath)
	if err != nil {
		if errors.Is(err, translation.ErrMalformed) {
			m.log.Warn("### Warning: ", m.cfg.TranslationsPath, " is not a valid translation file: ", err)
		} else {
			m.log.Warn("### Warning: Could not open ", m.cfg.TranslationsPath, ": ", err)
		}
		return translation.Empty()
	}

	m.log.Infoln("### Loaded", store.Len(), "translations.")
	if store.Skipped() > 0 {
		m.log.Warn("### Skipped ", store.Skipped(), " malformed entries")
	}
	return store
}

// ProcessAttach loads translations, resolves and installs the hooks.
// Failures only reduce the module to passthrough; it always returns true.
func (m *Module) ProcessAttach() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attached.Load() {
		return true
	}

	exe, err := os.Executable()
	if err != nil {
		exe = "unknown executable"
	}
	m.log.Infoln("##################################################################")
	m.log.Infoln("###", exe)

	store := m.loadStore()

	sc := scanner.New(m.image)
	m.set.Resolve(sc)

	if err := m.set.Attach(); err != nil {
		m.log.Warn("### Error attaching hooks: ", err)
	}

	r := redirect.New(store, m.bind(m.set),
		redirect.WithFormatCapacity(m.cfg.FormatCapacity),
		redirect.WithDebug(m.cfg.Debug),
	)
	m.redirector.Store(r)

	m.attached.Store(true)
	m.threadAttach()
	m.log.Infoln("### Attached.")

	return true
}

// ProcessDetach removes the hooks
func (m *Module) ProcessDetach() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.attached.Load() {
		return true
	}

	m.threadDetach()

	if err := m.set.Detach(); err != nil && !errors.Is(err, hook.ErrNotAttached) {
		m.log.Warn("### Error detaching hooks: ", err)
	}

	if r := m.redirector.Load(); r != nil {
		s := r.Stats()
		m.log.Infoln("### Draw", s.DrawHits, "/", s.DrawHits+s.DrawMisses,
			"Copy", s.CopyHits, "/", s.CopyHits+s.CopyMisses,
			"Measure", s.MeasureHits, "/", s.MeasureHits+s.MeasureMisses,
			"width overrides", s.WidthOverrides)
	}

	m.attached.Store(false)
	m.log.Infoln("### Closing.")

	return true
}

// ThreadAttach records a new host thread
func (m *Module) ThreadAttach() bool {
	m.threadAttach()
	return true
}

// ThreadDetach records a host thread leaving
func (m *Module) ThreadDetach() bool {
	m.threadDetach()
	return true
}

func (m *Module) threadAttach() {
	n := m.threads.Add(1)
	if m.cfg.Debug {
		m.log.Debugln("Thread attach, active:", n)
	}
}

func (m *Module) threadDetach() {
	n := m.threads.Add(-1)
	if m.cfg.Debug {
		m.log.Debugln("Thread detach, active:", n)
	}
}
