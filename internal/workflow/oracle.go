package workflow

// Oracle is the read-only phase view the gate engine consumes. The engine
// never advances phase; transitions happen through explicit commands.
type Oracle interface {
	State(workDir string) (*State, error)
}

// FileOracle reads the state file on every call. Phase changes take effect
// on the next evaluation; verdicts are never cached.
type FileOracle struct{}

func (FileOracle) State(workDir string) (*State, error) {
	return Load(workDir)
}

// StaticOracle serves a fixed state with no disk access.
type StaticOracle struct {
	S *State
}

func (o StaticOracle) State(string) (*State, error) {
	if o.S == nil {
		return &State{Phase: PhaseResearch}, nil
	}
	return o.S, nil
}
