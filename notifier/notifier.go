package notifier

import "github.com/exvulsec/safeguard/model"

const (
	LarkNotifierName  = "LarkNotifier"
	SlackNotifierName = "SlackNotifier"
)

// Report is the human-readable rendering of one conclusion, one bullet per
// guard outcome.
type Report struct {
	Chain       string
	SafeAddress string
	SafeTxHash  string
	To          string
	AllOK       bool
	Summary     string
	Outcomes    []model.VerificationOutcome
}

type Notifier interface {
	Name() string
	Notify(report Report)
}
