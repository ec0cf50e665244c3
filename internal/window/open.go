package window

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/bryanchriswhite/winctl/internal/config"
	"github.com/bryanchriswhite/winctl/internal/logger"
	"go.opentelemetry.io/otel/trace"
)

// Open creates the backend named by cfg, confines it to its own thread,
// optionally traces it and guards it for Do. The configured window options
// are applied only when no existing window id is configured. tracer may be
// nil.
func Open(cfg *config.Config, tracer trace.Tracer) (Window[any], error) {
	switch cfg.Backend {
	case config.BackendMemory:
		w := Confine[MemoryHandle](NewMemoryWindow(MonitorSpecsFromConfig(cfg.Monitors)))
		return finish[MemoryHandle](w, cfg, tracer), nil

	case config.BackendX11, "":
		opts := X11Options{
			Title:  cfg.Window.Title,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
		}
		if cfg.Window.ID != "" {
			id, err := ParseWindowID(cfg.Window.ID)
			if err != nil {
				return nil, err
			}
			opts.WindowID = id
		}
		w, err := ConfineFunc(func() (Window[xproto.Window], error) {
			x, err := NewX11Window(opts)
			if err != nil {
				return nil, err
			}
			return x, nil
		})
		if err != nil {
			return nil, err
		}
		return finish[xproto.Window](w, cfg, tracer), nil

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrUnsupported, cfg.Backend)
	}
}

func finish[H any](w Window[H], cfg *config.Config, tracer trace.Tracer) Window[any] {
	if tracer != nil {
		w = Traced(w, tracer)
	}
	g := Guard(w)

	log := logger.WithComponent("window")
	if cfg.Window.ID == "" {
		err := g.Do(func() { Apply[H](g, OptionsFromConfig(cfg.Window)) })
		if err != nil {
			log.Warn().Err(err).Msg("Initial window options partially applied")
		}
	} else {
		log.Debug().Str("window", cfg.Window.ID).Msg("Attached to existing window, leaving its presentation alone")
	}

	log.Info().
		Str("backend", Name(g)).
		Msg("Window opened")
	return Erase[H](g)
}
