package logger

// NopLogger discards all log output. Used in tests.
type NopLogger struct{}

// NewNop creates a new no-op logger.
func NewNop() Logger {
	return &NopLogger{}
}

func (l *NopLogger) Debug(string, ...Field) {}
func (l *NopLogger) Info(string, ...Field)  {}
func (l *NopLogger) Warn(string, ...Field)  {}
func (l *NopLogger) Error(string, ...Field) {}
func (l *NopLogger) Fatal(string, ...Field) {}

// With returns the same no-op logger.
func (l *NopLogger) With(...Field) Logger { return l }

// Sync does nothing.
func (l *NopLogger) Sync() error { return nil }
