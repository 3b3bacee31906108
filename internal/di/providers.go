package di

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/dukerupert/listwise/internal/config"
	"github.com/dukerupert/listwise/internal/logging"
	"github.com/dukerupert/listwise/internal/prefs"
	"github.com/dukerupert/listwise/internal/remote"
	"github.com/dukerupert/listwise/internal/state"
)

func ProvideConfig(i do.Injector) (*config.Client, error) {
	return config.LoadClient()
}

func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Client](i)
	return logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
}

// ProvidePrefs opens the preference database. The container closes it on
// shutdown.
func ProvidePrefs(i do.Injector) (*prefs.Store, error) {
	cfg := do.MustInvoke[*config.Client](i)
	log := do.MustInvoke[*slog.Logger](i)

	if err := os.MkdirAll(cfg.PrefsDir, 0o700); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	p, err := prefs.Open(cfg.PrefsDir, log.With("component", "prefs"))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ProvideRemote creates the service client, keeps the saved session in step
// with it and restores the last session if it is still valid.
func ProvideRemote(i do.Injector) (*remote.Client, error) {
	cfg := do.MustInvoke[*config.Client](i)
	log := do.MustInvoke[*slog.Logger](i)
	p := do.MustInvoke[*prefs.Store](i)

	c := remote.NewClient(cfg.APIURL, log.With("component", "remote"))
	c.OnAuthStateChange(p.TrackSession)

	saved, err := p.Session()
	if err != nil {
		log.Warn("failed to read saved session", "error", err)
		return c, nil
	}
	if saved == nil {
		return c, nil
	}
	if err := c.Restore(*saved); err != nil {
		log.Info("saved session not restored", "error", err)
		if err := p.SaveSession(nil); err != nil {
			log.Warn("failed to clear saved session", "error", err)
		}
	}
	return c, nil
}

// StateHandle wraps the state store with shutdown capability.
type StateHandle struct {
	*state.Store
}

// Shutdown implements do.Shutdownable.
func (h *StateHandle) Shutdown() error {
	h.Close()
	return nil
}

func ProvideState(i do.Injector) (*StateHandle, error) {
	cfg := do.MustInvoke[*config.Client](i)
	log := do.MustInvoke[*slog.Logger](i)
	p := do.MustInvoke[*prefs.Store](i)
	c := do.MustInvoke[*remote.Client](i)

	s := state.New(c, c,
		state.WithLogger(log),
		state.WithPreferences(p),
		state.WithErrorTTL(cfg.ErrorTTL),
		state.WithClock(time.Now),
	)
	return &StateHandle{Store: s}, nil
}
