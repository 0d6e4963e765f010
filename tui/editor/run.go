package editor

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/reqs/config"
	"github.com/grovetools/reqs/logging"
	"github.com/grovetools/reqs/pkg/watch"
	"github.com/grovetools/reqs/state"
	"github.com/grovetools/reqs/tui"
	"github.com/grovetools/reqs/tui/keymap"
	"github.com/grovetools/reqs/tui/theme"
)

// Options configures Run.
type Options struct {
	Config *config.Config
	// PrefsDir is where session preferences are restored from and saved to.
	// Empty disables them.
	PrefsDir string
}

// Run opens the editor on store and blocks until the user quits.
//
// When the store already has a project path, that project is loaded and a
// failure is returned. Otherwise the previous session is restored from
// PrefsDir, and restore failures only leave the editor without a project.
func Run(ctx context.Context, store *state.Store, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := logging.NewLogger("editor")

	if store.State().ProjectPath() != "" {
		if res := store.Dispatch(state.LoadProject{}); !res.OK {
			return res.Err()
		}
	} else if opts.PrefsDir != "" {
		restorePrefs(store, opts.PrefsDir)
	}
	if name := cfg.Editor.ExtendedAttribute; name != "" && store.State().ExtendedAttribute() == "" {
		store.Dispatch(state.SetExtendedAttributeName{Name: name})
	}

	tui.InitializeTUI()
	modelOpts := []Option{
		WithKeys(keymap.Load(cfg.Editor.Keys)),
		WithTheme(theme.New(cfg.Editor.Theme)),
		WithLogger(logger),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var watcher *watch.Watcher
	if s := store.State(); s.HasProject() && cfg.Editor.WatchEnabled() {
		w, err := watch.New(s.Tree().Root(), time.Duration(cfg.Editor.WatchDebounceMs)*time.Millisecond,
			watch.WithIgnore(cfg.Ignore...))
		if err != nil {
			logger.WithError(err).Warn("File watching disabled")
		} else {
			watcher = w
			defer watcher.Close()
			modelOpts = append(modelOpts, WithSelfWriteMarker(watcher))
		}
	}

	m := New(store, modelOpts...)
	defer m.Close()

	// Log lines would tear the alternate screen.
	logging.SetGlobalOutput(io.Discard)
	defer logging.SetGlobalOutput(os.Stderr)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if watcher != nil {
		go watcher.Start(ctx, func(ev watch.Event) {
			p.Send(fileChangedMsg(ev))
		})
	}

	_, err := p.Run()

	if opts.PrefsDir != "" {
		if perr := state.SavePrefs(opts.PrefsDir, state.PrefsFromState(store.State())); perr != nil {
			logger.WithError(perr).Warn("Failed to save session preferences")
		}
	}
	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func restorePrefs(store *state.Store, dir string) {
	logger := logging.NewLogger("editor")
	prefs, err := state.LoadPrefs(dir)
	if err != nil {
		logger.WithError(err).Warn("Ignoring session preferences")
		return
	}
	for _, action := range prefs.Actions() {
		if res := store.Dispatch(action); !res.OK {
			logger.WithError(res.Err()).WithField("action", state.Name(action)).Warn("Could not restore previous session")
			return
		}
	}
}
