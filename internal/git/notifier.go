package git

// Notifier receives informational notices emitted while an operation runs.
// The engine never depends on it for its own logic; a nil-like no-op
// implementation is installed by default.
type Notifier interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

type nopNotifier struct{}

func (nopNotifier) Info(string, ...any) {}
func (nopNotifier) Warn(string, ...any) {}
