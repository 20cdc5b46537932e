package types

// Logger is the structured logger the dictionary writes its diagnostics to:
// dropped notifications, observer panics and lifecycle events. Methods take a
// message followed by alternating key/value pairs, so any sugared structured
// logger (zap.SugaredLogger among them) satisfies it directly.
type Logger interface {
	// Debug logs fine-grained delivery detail at DebugLevel.
	Debug(msg string, keysAndValues ...any)

	// Info logs lifecycle events at InfoLevel.
	Info(msg string, keysAndValues ...any)

	// Warn logs recoverable delivery problems, such as a dropped
	// notification on a full subscriber channel, at WarnLevel.
	Warn(msg string, keysAndValues ...any)

	// Error logs delivery failures and observer panics at ErrorLevel.
	Error(msg string, keysAndValues ...any)

	// Fatal logs at FatalLevel and then calls os.Exit(1). The dictionary
	// itself never calls Fatal; it is part of the interface so sugared
	// loggers plug in without an adapter.
	Fatal(msg string, keysAndValues ...any)
}
