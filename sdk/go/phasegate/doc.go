// Package phasegate provides in-process workflow gating for Go agent
// frameworks. It wraps tool functions and evaluates the research →
// planning → implementation gates before each call, without shelling out
// to hook processes.
//
// Usage:
//
//	pg, err := phasegate.New(phasegate.WithWorkDir("/work/project"))
//	wrapped := pg.Wrap(myEditTool)
//	result, err := wrapped(ctx, phasegate.Action{
//	    Tool:     "Edit",
//	    FilePath: "internal/app/app.go",
//	})
//
// The SDK links directly against internal packages for zero-subprocess
// overhead. External users import github.com/ppiankov/phasegate/sdk/go/phasegate.
package phasegate
