package guard

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/model"
	"github.com/exvulsec/safeguard/safe"
)

// ContextFetcher builds the evaluation context for one queued transaction.
type ContextFetcher interface {
	FetchContext(ctx context.Context, safeAddress, safeTxHash string, excludeHashes ...string) (*Context, error)
}

type serviceContextFetcher struct {
	client *safe.Client
}

func NewContextFetcher(safeClient *safe.Client) ContextFetcher {
	return &serviceContextFetcher{client: safeClient}
}

func (f *serviceContextFetcher) FetchContext(ctx context.Context, safeAddress, safeTxHash string, excludeHashes ...string) (*Context, error) {
	pending, err := f.client.Transaction(ctx, safeTxHash)
	if err != nil {
		return nil, err
	}

	reconstructed, err := safe.Reconstruct(pending)
	if err != nil {
		return nil, err
	}

	history, err := f.client.HistoricalTransactions(ctx, safeAddress, append(excludeHashes, safeTxHash)...)
	if err != nil {
		return nil, err
	}

	balances, err := f.client.BalancesUSD(ctx, safeAddress)
	if err != nil {
		return nil, err
	}

	return &Context{
		Pending:          pending,
		Reconstructed:    reconstructed,
		RelatedAddresses: pending.RelatedAddresses(),
		History:          history,
		Balances:         balances,
	}, nil
}

// Pipeline executes guards strictly in their configured order and stops at
// the first failing one. The order is fixed at construction, cheap and fast
// guards first, and never changes at runtime.
type Pipeline struct {
	chain   string
	fetcher ContextFetcher
	guards  []Guard
}

func NewPipeline(chain string, fetcher ContextFetcher, guards ...Guard) (*Pipeline, error) {
	if len(guards) == 0 {
		return nil, fmt.Errorf("pipeline needs at least one guard")
	}
	return &Pipeline{chain: chain, fetcher: fetcher, guards: guards}, nil
}

// Run fetches the context once and evaluates the guards in order. A guard
// error aborts the run without a conclusion, the transaction is then neither
// approved nor rejected and the caller must not act on it.
func (p *Pipeline) Run(ctx context.Context, safeAddress, safeTxHash string, excludeHashes ...string) (*model.ValidationConclusion, error) {
	gctx, err := p.fetcher.FetchContext(ctx, safeAddress, safeTxHash, excludeHashes...)
	if err != nil {
		return nil, err
	}
	return p.runGuards(ctx, gctx)
}

func (p *Pipeline) runGuards(ctx context.Context, gctx *Context) (*model.ValidationConclusion, error) {
	safeTxHash := gctx.Pending.SafeTxHash
	outcomes := []model.VerificationOutcome{}
	for _, g := range p.guards {
		result, err := g.Evaluate(ctx, gctx)
		if err != nil {
			return nil, &PipelineError{Guard: g.Name(), Err: err}
		}
		if result == nil {
			logrus.Infof("guard %s gives no opinion on tx %s", g.Name(), safeTxHash)
			continue
		}
		outcomes = append(outcomes, *result)
		if !result.OK {
			logrus.Infof("guard %s failed tx %s: %s, skip the remaining guards", g.Name(), safeTxHash, result.Reason)
			break
		}
	}
	return model.NewValidationConclusion(p.chain, gctx.Pending.SafeAddress, safeTxHash, outcomes), nil
}
