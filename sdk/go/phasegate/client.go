package phasegate

import (
	"fmt"
	"os"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/gate"
)

// Client evaluates workflow gates for one project directory. Safe for
// concurrent tool calls: the engine holds no per-evaluation state.
type Client struct {
	cfg    clientConfig
	store  *config.Store
	engine gate.Evaluator
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("phasegate: resolve working directory: %w", err)
		}
		cfg.workDir = wd
	}

	return &Client{
		cfg:    cfg,
		store:  config.NewStore(),
		engine: gate.NewDefault(),
	}, nil
}

// WorkDir returns the project directory the client evaluates against.
func (c *Client) WorkDir() string { return c.cfg.workDir }

// Enforcing reports whether gates are active for the project: the
// initialization marker is present and the level is not relaxed.
func (c *Client) Enforcing() bool {
	if !c.store.IsInitialized(c.cfg.workDir) {
		return false
	}
	return !c.store.IsRelaxedMode(c.cfg.workDir)
}

// Check evaluates an action without performing it.
func (c *Client) Check(action Action) Result {
	kind, ok := gate.KindForTool(action.Tool)
	if !ok {
		kind = gate.Kind(action.Tool)
	}
	return toResult(c.engine.Evaluate(kind, c.cfg.workDir, gate.Context{
		FilePath: action.FilePath,
	}))
}
