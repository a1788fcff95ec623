package guard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exvulsec/safeguard/model"
)

type stubGuard struct {
	name      string
	ok        bool
	reason    string
	noOpinion bool
	err       error
	calls     int
}

func (sg *stubGuard) Name() string        { return sg.name }
func (sg *stubGuard) Description() string { return "stub guard " + sg.name }

func (sg *stubGuard) Evaluate(_ context.Context, _ *Context) (*model.VerificationOutcome, error) {
	sg.calls++
	if sg.err != nil {
		return nil, sg.err
	}
	if sg.noOpinion {
		return nil, nil
	}
	return outcome(sg, sg.ok, sg.reason), nil
}

type stubFetcher struct {
	gctx *Context
}

func (sf *stubFetcher) FetchContext(_ context.Context, _, _ string, _ ...string) (*Context, error) {
	return sf.gctx, nil
}

func composeTestContext() *Context {
	pending := &model.PendingTransaction{
		SafeAddress: "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		To:          "0x2f318C334780961FB129D2a6c30D0763d9a5C970",
		SafeTxHash:  "0xaaaa",
		Nonce:       7,
	}
	return &Context{
		Pending:          pending,
		RelatedAddresses: pending.RelatedAddresses(),
	}
}

func composePipeline(t *testing.T, guards ...Guard) *Pipeline {
	t.Helper()
	p, err := NewPipeline("ethereum", &stubFetcher{gctx: composeTestContext()}, guards...)
	require.NoError(t, err)
	return p
}

func TestPipelineShortCircuit(t *testing.T) {
	first := &stubGuard{name: "first", ok: true}
	second := &stubGuard{name: "second", ok: false, reason: "flagged"}
	third := &stubGuard{name: "third", ok: true}

	p := composePipeline(t, first, second, third)
	conclusion, err := p.Run(context.Background(), "0xsafe", "0xaaaa")
	require.NoError(t, err)

	assert.False(t, conclusion.AllOK)
	assert.Len(t, conclusion.Outcomes, 2)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 0, third.calls, "guards after the first failure must never run")
	assert.Equal(t, "flagged", conclusion.Outcomes[1].Reason)
}

func TestPipelineAggregation(t *testing.T) {
	first := &stubGuard{name: "first", ok: true}
	second := &stubGuard{name: "second", ok: true}

	p := composePipeline(t, first, second)
	conclusion, err := p.Run(context.Background(), "0xsafe", "0xaaaa")
	require.NoError(t, err)

	assert.True(t, conclusion.AllOK)
	assert.Len(t, conclusion.Outcomes, 2)
	for _, o := range conclusion.Outcomes {
		assert.True(t, o.OK)
	}
}

func TestPipelineNoOpinionIsNotRecorded(t *testing.T) {
	first := &stubGuard{name: "first", ok: true}
	silent := &stubGuard{name: "silent", noOpinion: true}
	third := &stubGuard{name: "third", ok: true}

	p := composePipeline(t, first, silent, third)
	conclusion, err := p.Run(context.Background(), "0xsafe", "0xaaaa")
	require.NoError(t, err)

	assert.True(t, conclusion.AllOK)
	assert.Len(t, conclusion.Outcomes, 2)
	assert.Equal(t, 1, silent.calls)
	assert.Equal(t, 1, third.calls, "a no-opinion guard must not block the pipeline")
}

func TestPipelineGuardErrorProducesNoConclusion(t *testing.T) {
	first := &stubGuard{name: "first", ok: true}
	broken := &stubGuard{name: "broken", err: fmt.Errorf("oracle is down")}
	third := &stubGuard{name: "third", ok: true}

	p := composePipeline(t, first, broken, third)
	conclusion, err := p.Run(context.Background(), "0xsafe", "0xaaaa")

	require.Error(t, err)
	assert.Nil(t, conclusion)
	var pipelineErr *PipelineError
	require.True(t, errors.As(err, &pipelineErr))
	assert.Equal(t, "broken", pipelineErr.Guard)
	assert.Equal(t, 0, third.calls)
}

func TestPipelineIdempotence(t *testing.T) {
	// deterministic guard set only: same immutable input, identical conclusions
	blacklist := NewBlacklistGuard([]string{"0x000000000000000000000000000000000000dEaD"})
	p := composePipeline(t, blacklist)

	first, err := p.Run(context.Background(), "0xsafe", "0xaaaa")
	require.NoError(t, err)
	second, err := p.Run(context.Background(), "0xsafe", "0xaaaa")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPipelineNeedsGuards(t *testing.T) {
	_, err := NewPipeline("ethereum", &stubFetcher{})
	assert.Error(t, err)
}
