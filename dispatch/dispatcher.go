package dispatch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/model"
	"github.com/exvulsec/safeguard/notifier"
	"github.com/exvulsec/safeguard/safe"
)

// Dispatcher turns a produced conclusion into at most one on-chain/off-chain
// action plus an optional report. Approve and reject exclude each other by
// construction, notify is independent. It is never called without a
// conclusion: a pipeline error means no action at all.
type Dispatcher struct {
	SignOrExecute bool
	Reject        bool
	Notify        bool

	signer    *safe.Signer
	notifiers []notifier.Notifier
}

func NewDispatcher(signer *safe.Signer, notifiers []notifier.Notifier, signOrExecute, reject, notify bool) *Dispatcher {
	return &Dispatcher{
		SignOrExecute: signOrExecute,
		Reject:        reject,
		Notify:        notify,
		signer:        signer,
		notifiers:     notifiers,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, tx *model.PendingTransaction, conclusion *model.ValidationConclusion) error {
	if conclusion == nil {
		return fmt.Errorf("dispatch tx %s without a conclusion", tx.SafeTxHash)
	}

	switch {
	case conclusion.AllOK && d.SignOrExecute:
		action, err := d.signer.SignOrExecute(ctx, tx)
		if err != nil {
			return fmt.Errorf("approve tx %s is err %v", tx.SafeTxHash, err)
		}
		logrus.Infof("tx %s passed all guards and was %s", tx.SafeTxHash, action)
	case !conclusion.AllOK && d.Reject:
		if err := d.signer.Reject(ctx, tx); err != nil {
			return fmt.Errorf("reject tx %s is err %v", tx.SafeTxHash, err)
		}
		logrus.Infof("tx %s was rejected with a replacement tx at nonce %d", tx.SafeTxHash, tx.Nonce)
	}

	if d.Notify {
		d.notify(ctx, tx, conclusion)
	}
	return nil
}

func (d *Dispatcher) notify(ctx context.Context, tx *model.PendingTransaction, conclusion *model.ValidationConclusion) {
	if err := d.signer.PostMessage(ctx, tx.SafeAddress, conclusion.Summary); err != nil {
		logrus.Errorf("post report message for tx %s is err %v", tx.SafeTxHash, err)
	}
	report := notifier.Report{
		Chain:       conclusion.Chain,
		SafeAddress: tx.SafeAddress,
		SafeTxHash:  tx.SafeTxHash,
		To:          tx.To,
		AllOK:       conclusion.AllOK,
		Summary:     conclusion.Summary,
		Outcomes:    conclusion.Outcomes,
	}
	for _, n := range d.notifiers {
		n.Notify(report)
	}
}
