// Package notify delivers operator-facing messages: reminder firings, state
// transition confirmations and non-fatal storage failures.
package notify

import "github.com/sirupsen/logrus"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Notifier is fire-and-forget: delivery failures are logged, never returned
// to business logic.
type Notifier interface {
	Notify(message string, severity Severity)
}

// LogNotifier writes notifications to the application log. It is the default
// delivery channel when no external channel is configured.
type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithField("component", "notify")}
}

func (n *LogNotifier) Notify(message string, severity Severity) {
	switch severity {
	case SeverityWarning:
		n.log.Warn(message)
	default:
		n.log.Info(message)
	}
}

// Multi fans a notification out to every configured channel.
type Multi []Notifier

func (m Multi) Notify(message string, severity Severity) {
	for _, n := range m {
		n.Notify(message, severity)
	}
}
