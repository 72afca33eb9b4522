package monitoring

import "log"

// Logf is the package-level diagnostic logger used by the width pipeline. It
// defaults to log.Printf but may be replaced by SetLogger so tests or the CLI
// can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Mute silences Logf until the returned restore function is called.
func Mute() (restore func()) {
	previous := Logf
	SetLogger(nil)
	return func() { Logf = previous }
}
