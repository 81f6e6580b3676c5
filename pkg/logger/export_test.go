package logger

// NewMultiHandler exposes the fan-out handler to tests.
var NewMultiHandler = newMultiHandler
