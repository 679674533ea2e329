package pathguard

// Checker is the path-validation capability the gate engine composes over.
// Exactly one implementation is selected when the engine is built: Guard in
// normal operation, AllowAll when enforcement is switched off.
type Checker interface {
	Validate(path string, opts Options) Result
}

// Guard is the production Checker backed by Validate.
type Guard struct{}

func (Guard) Validate(path string, opts Options) Result {
	return Validate(path, opts)
}

// AllowAll accepts every path unchanged. It performs no filesystem access
// and exists so disabled-enforcement composition does not need nil checks
// at call sites.
type AllowAll struct{}

func (AllowAll) Validate(path string, opts Options) Result {
	return Result{Valid: true, Resolved: path}
}
