package guard

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/exvulsec/safeguard/model"
	"github.com/exvulsec/safeguard/safe"
)

// Context is the read-only material one transaction evaluation works on. It
// is built once per run and discarded with the conclusion.
type Context struct {
	Pending          *model.PendingTransaction
	Reconstructed    *safe.SafeTx
	RelatedAddresses mapset.Set[string]
	History          []model.HistoricalTransaction
	Balances         model.Balances
}

// Guard is one independent validator. A malicious transaction is expressed
// as OK=false with a reason, never as an error. A nil outcome with a nil
// error means the guard has no opinion, the check was inapplicable. A non-nil
// error means the guard failed to reach a verdict at all.
type Guard interface {
	Name() string
	Description() string
	Evaluate(ctx context.Context, gctx *Context) (*model.VerificationOutcome, error)
}

// PipelineError wraps a guard invocation error. No conclusion exists when it
// is returned, the caller must not act on the transaction.
type PipelineError struct {
	Guard string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("guard %s failed to reach a verdict: %v", e.Guard, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func outcome(g Guard, ok bool, reason string) *model.VerificationOutcome {
	return &model.VerificationOutcome{
		GuardName:        g.Name(),
		GuardDescription: g.Description(),
		OK:               ok,
		Reason:           reason,
	}
}
