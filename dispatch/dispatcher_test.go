package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exvulsec/safeguard/config"
	"github.com/exvulsec/safeguard/model"
	"github.com/exvulsec/safeguard/notifier"
	"github.com/exvulsec/safeguard/safe"
)

// well-known hardhat development key, never holds funds
const testSignerKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type serviceCall struct {
	path    string
	payload map[string]any
}

type recordingNotifier struct {
	reports []notifier.Report
}

func (rn *recordingNotifier) Name() string { return "recording" }

func (rn *recordingNotifier) Notify(report notifier.Report) {
	rn.reports = append(rn.reports, report)
}

func composeDispatchSigner(t *testing.T, calls *[]serviceCall) *safe.Signer {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := serviceCall{path: r.URL.Path}
		if r.Body != nil {
			payload := map[string]any{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
				call.payload = payload
			}
		}
		*calls = append(*calls, call)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	config.Conf.SafeAPI.BaseURL = server.URL
	config.Conf.Signer.PrivateKey = testSignerKey
	config.Conf.Chain.ID = 1

	signer, err := safe.NewSigner(safe.NewClient())
	require.NoError(t, err)
	return signer
}

func composePendingTransaction() *model.PendingTransaction {
	return &model.PendingTransaction{
		SafeAddress:           "0x1c0FFEe254729296a45a3885639AC7E10F9d5497",
		To:                    "0x2f318C334780961FB129D2a6c30D0763d9a5C970",
		Value:                 decimal.NewFromInt(1000),
		GasToken:              "0x0000000000000000000000000000000000000000",
		RefundReceiver:        "0x0000000000000000000000000000000000000000",
		Nonce:                 7,
		SafeTxHash:            "0xaaaa",
		ConfirmationsRequired: 3,
	}
}

func approvedConclusion() *model.ValidationConclusion {
	return model.NewValidationConclusion("ethereum", "0x1c0FFEe254729296a45a3885639AC7E10F9d5497", "0xaaaa",
		[]model.VerificationOutcome{{GuardName: "blacklist", OK: true}})
}

func rejectedConclusion() *model.ValidationConclusion {
	return model.NewValidationConclusion("ethereum", "0x1c0FFEe254729296a45a3885639AC7E10F9d5497", "0xaaaa",
		[]model.VerificationOutcome{{GuardName: "blacklist", OK: false, Reason: "recipient is blacklisted"}})
}

func TestDispatchApproveConfirms(t *testing.T) {
	calls := []serviceCall{}
	d := NewDispatcher(composeDispatchSigner(t, &calls), nil, true, true, false)

	require.NoError(t, d.Dispatch(context.Background(), composePendingTransaction(), approvedConclusion()))
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].path, "/confirmations/")
}

func TestDispatchRejectProposesReplacement(t *testing.T) {
	calls := []serviceCall{}
	d := NewDispatcher(composeDispatchSigner(t, &calls), nil, true, true, false)

	tx := composePendingTransaction()
	require.NoError(t, d.Dispatch(context.Background(), tx, rejectedConclusion()))
	require.Len(t, calls, 1, "a failing conclusion must never confirm")
	assert.True(t, strings.HasSuffix(calls[0].path, "/multisig-transactions/"))
	assert.Equal(t, "0", calls[0].payload["value"])
	assert.Nil(t, calls[0].payload["data"])
	assert.Equal(t, float64(tx.Nonce), calls[0].payload["nonce"])
}

func TestDispatchDisabledActionsDoNothing(t *testing.T) {
	calls := []serviceCall{}
	d := NewDispatcher(composeDispatchSigner(t, &calls), nil, false, false, false)

	require.NoError(t, d.Dispatch(context.Background(), composePendingTransaction(), rejectedConclusion()))
	assert.Empty(t, calls)
}

func TestDispatchNotify(t *testing.T) {
	calls := []serviceCall{}
	rn := &recordingNotifier{}
	d := NewDispatcher(composeDispatchSigner(t, &calls), []notifier.Notifier{rn}, false, false, true)

	conclusion := rejectedConclusion()
	require.NoError(t, d.Dispatch(context.Background(), composePendingTransaction(), conclusion))

	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].path, "/messages/")
	assert.Equal(t, conclusion.Summary, calls[0].payload["message"])

	require.Len(t, rn.reports, 1)
	assert.False(t, rn.reports[0].AllOK)
	assert.Equal(t, "0xaaaa", rn.reports[0].SafeTxHash)
}

func TestDispatchWithoutConclusionIsAnError(t *testing.T) {
	calls := []serviceCall{}
	d := NewDispatcher(composeDispatchSigner(t, &calls), nil, true, true, true)

	err := d.Dispatch(context.Background(), composePendingTransaction(), nil)
	require.Error(t, err)
	assert.Empty(t, calls, "no conclusion means no action at all")
}
