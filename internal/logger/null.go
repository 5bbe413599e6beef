package logger

// NullLogger discards everything.
type NullLogger struct{}

func (NullLogger) Successf(_ string, _ ...any) {}

func (NullLogger) Debugf(_ string, _ ...any) {}

func (NullLogger) SQL(_ string, _ ...any) {}

func (NullLogger) Error(_ error) {}
