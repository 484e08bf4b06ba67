package core

// Logger is any leveled logger the app reports through.
// Implementations may extract well-known argument types (e.g. the acting
// user) for richer error reports.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
