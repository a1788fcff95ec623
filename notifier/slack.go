package notifier

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

type slackNotifier struct {
	webHookURL string
}

func NewSlackNotifier(webHookURL string) Notifier {
	return &slackNotifier{webHookURL: webHookURL}
}

func (sn *slackNotifier) Name() string {
	return SlackNotifierName
}

func (sn *slackNotifier) Notify(report Report) {
	color := "good"
	headline := fmt.Sprintf("Safe transaction on %s passed all guards\n", strings.ToUpper(report.Chain))
	if !report.AllOK {
		color = "danger"
		headline = fmt.Sprintf("⚠️ Detected a flagged safe transaction on %s ⚠️\n", strings.ToUpper(report.Chain))
	}
	attachment := slack.Attachment{
		Color:      color,
		AuthorName: "SafeGuard",
		Fallback:   headline,
		Text:       headline + report.Summary,
		Footer:     fmt.Sprintf("safeguard-on-%s", report.Chain),
		Ts:         json.Number(strconv.FormatInt(time.Now().Unix(), 10)),
	}
	msg := slack.WebhookMessage{
		Attachments: []slack.Attachment{attachment},
	}
	if err := slack.PostWebhook(sn.webHookURL, &msg); err != nil {
		logrus.Errorf("send report for tx %s to slack is err %v", report.SafeTxHash, err)
	}
}
