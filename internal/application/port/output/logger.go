package output

// LoggerPort is a leveled structured logger. Args are alternating keys and
// values.
type LoggerPort interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a logger that adds args to every entry.
	With(args ...any) LoggerPort
	// Named returns a child logger tagged with a component name.
	Named(name string) LoggerPort

	Close() error
}
