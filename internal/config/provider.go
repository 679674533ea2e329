package config

// Provider is the configuration capability the gate engine and hook
// pipeline compose over. *Store is the production implementation; Static
// serves a fixed configuration with no disk access, for disabled
// enforcement and tests.
type Provider interface {
	Load(workDir string, force bool) Config
	IsInitialized(workDir string) bool
}

// Static is an inert Provider returning a fixed configuration.
type Static struct {
	Cfg         Config
	Initialized bool
}

func (s Static) Load(workDir string, force bool) Config {
	if s.Cfg == nil {
		return Defaults()
	}
	return s.Cfg
}

func (s Static) IsInitialized(string) bool { return s.Initialized }
