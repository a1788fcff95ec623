package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/exvulsec/safeguard/judge"
	"github.com/exvulsec/safeguard/model"
)

const RiskJudgeGuardName = "risk-judge"

const riskJudgeSystemPrompt = `You are a security reviewer for a multi-signature wallet. You will receive the wallet's current balances, a new queued transaction with its decoded call and execution metadata, and a window of the wallet's most recent executed transactions.

Decide whether the new transaction looks malicious or otherwise unsafe to sign.

Rules:
- Judge amounts in absolute money terms, not relative to the wallet's balance. Draining 10000 USD is serious even if the wallet holds millions.
- Ignore how many signatures the transaction has already collected. The number of confirmations says nothing about whether it is malicious.
- If you are uncertain, flag the transaction. It is better to be safe than sorry.
- You do not know whether any of the past transactions were malicious or benign. Never invent such labels, use the history only to judge whether the new transaction fits the wallet's normal behavior.

Respond with a JSON object of exactly this shape: {"reason": "<why, at most 500 characters>", "ok": <true if the transaction looks safe, false otherwise>}`

// RiskJudgeGuard asks the risk model for a verdict on the new transaction in
// the context of the wallet's balances and recent history. The model's
// structured answer is taken verbatim.
type RiskJudgeGuard struct {
	classifier   judge.Classifier
	nativeSymbol string
}

func NewRiskJudgeGuard(classifier judge.Classifier, nativeSymbol string) *RiskJudgeGuard {
	if nativeSymbol == "" {
		nativeSymbol = "ETH"
	}
	return &RiskJudgeGuard{classifier: classifier, nativeSymbol: nativeSymbol}
}

func (rg *RiskJudgeGuard) Name() string {
	return RiskJudgeGuardName
}

func (rg *RiskJudgeGuard) Description() string {
	return "asks the risk model to judge the transaction against the wallet's balances and history"
}

func (rg *RiskJudgeGuard) Evaluate(ctx context.Context, gctx *Context) (*model.VerificationOutcome, error) {
	prompt, err := rg.composePrompt(gctx)
	if err != nil {
		return nil, err
	}

	judgment, err := rg.classifier.Classify(ctx, riskJudgeSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return outcome(rg, judgment.OK, judgment.Reason), nil
}

func (rg *RiskJudgeGuard) composePrompt(gctx *Context) (string, error) {
	newTx, err := describeTransaction(gctx.Pending)
	if err != nil {
		return "", err
	}

	history := gctx.History
	if len(history) > model.HistoryWindow {
		history = history[:model.HistoryWindow]
	}
	pastTxs := make([]string, 0, len(history))
	for _, tx := range history {
		described, err := describeTransaction(&tx)
		if err != nil {
			return "", err
		}
		pastTxs = append(pastTxs, described)
	}

	sections := []string{
		"Current balances:",
		gctx.Balances.Describe(rg.nativeSymbol),
		"",
		"New queued transaction:",
		newTx,
		"",
		fmt.Sprintf("Last %d executed transactions, most recent first:", len(pastTxs)),
		strings.Join(pastTxs, "\n"),
	}
	return strings.Join(sections, "\n"), nil
}

func describeTransaction(tx *model.PendingTransaction) (string, error) {
	payload := map[string]any{
		"to":            tx.To,
		"value":         tx.Value.String(),
		"operation":     tx.Operation,
		"nonce":         tx.Nonce,
		"threshold":     tx.ConfirmationsRequired,
		"confirmations": len(tx.Confirmations),
		"proposer":      tx.Proposer,
	}
	if tx.DataDecoded != nil {
		payload["decoded_call"] = tx.DataDecoded
	} else if tx.Data != nil {
		payload["data"] = *tx.Data
	}
	described, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal transaction %s for prompt is err %v", tx.SafeTxHash, err)
	}
	return string(described), nil
}
