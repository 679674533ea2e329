package phasegate

import (
	"context"
)

// ToolFunc is the function signature that Wrap guards. The caller
// provides an Action describing the intended operation.
type ToolFunc func(ctx context.Context, action Action) (any, error)

// Wrap returns a new ToolFunc that evaluates the gates before calling
// fn. A block verdict returns a *BlockedError without calling fn; a
// warn verdict invokes the warn handler (when one is configured) and
// proceeds.
func (c *Client) Wrap(fn ToolFunc) ToolFunc {
	return func(ctx context.Context, action Action) (any, error) {
		result := c.Check(action)

		switch result.Verdict {
		case Block:
			return nil, &BlockedError{Action: action, Result: result}
		case Warn:
			if c.cfg.onWarn != nil {
				c.cfg.onWarn(action, result)
			}
		}

		return fn(ctx, action)
	}
}
