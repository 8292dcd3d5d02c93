package notify

import (
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// SlackNotifier posts notifications to a Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	log     *logrus.Entry
}

func NewSlackNotifier(token, channel string, log *logrus.Logger) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
		log:     log.WithField("component", "notify.slack"),
	}
}

func (s *SlackNotifier) Notify(message string, severity Severity) {
	attachment := slack.Attachment{
		Color: severityColor(severity),
		Text:  message,
	}

	_, _, err := s.client.PostMessage(
		s.channel,
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		s.log.WithError(err).Warn("failed to post slack message")
	}
}

func severityColor(severity Severity) string {
	switch severity {
	case SeverityWarning:
		return "#ffcc00"
	case SeveritySuccess:
		return "#36a64f"
	default:
		return "#439fe0"
	}
}
