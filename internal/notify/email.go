package notify

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// EmailNotifier sends notifications over SMTP.
type EmailNotifier struct {
	dialer    *gomail.Dialer
	from      string
	receivers []string
	log       *logrus.Entry
}

func NewEmailNotifier(host string, port int, from, password string, receivers []string, log *logrus.Logger) *EmailNotifier {
	return &EmailNotifier{
		dialer:    gomail.NewDialer(host, port, from, password),
		from:      from,
		receivers: receivers,
		log:       log.WithField("component", "notify.email"),
	}
}

func (e *EmailNotifier) Notify(message string, severity Severity) {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.receivers...)
	m.SetHeader("Subject", "МотоДиагностика: "+subject(severity))
	m.SetBody("text/plain", message)

	if err := e.dialer.DialAndSend(m); err != nil {
		e.log.WithError(err).Warn("failed to send email notification")
	}
}

func subject(severity Severity) string {
	switch severity {
	case SeverityWarning:
		return "предупреждение"
	case SeveritySuccess:
		return "готово"
	default:
		return "уведомление"
	}
}
