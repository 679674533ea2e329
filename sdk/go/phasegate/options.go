package phasegate

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	workDir string
	onWarn  func(Action, Result)
}

// WithWorkDir sets the project directory the gates evaluate against.
// Defaults to the process working directory.
func WithWorkDir(dir string) Option {
	return func(c *clientConfig) { c.workDir = dir }
}

// WithWarnHandler installs a callback invoked for warn verdicts before
// the wrapped tool runs. Without one, warnings are silent.
func WithWarnHandler(fn func(Action, Result)) Option {
	return func(c *clientConfig) { c.onWarn = fn }
}
