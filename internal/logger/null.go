package logger

type NullLogger struct{}

var _ Logger = (*NullLogger)(nil)

func (NullLogger) Successf(_ string, _ ...interface{}) {}

func (NullLogger) Debugf(_ string, _ ...interface{}) {}

func (NullLogger) Patchf(_ string, _ ...interface{}) {}

func (NullLogger) Error(_ error) {}
