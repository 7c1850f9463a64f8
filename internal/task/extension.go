package task

// Extension is implemented by pluggable components that contribute task
// definitions. Extensions are registered before the runtime environment is
// constructed; a registration error aborts startup.
type Extension interface {
	Register(r *Registry) error
}
