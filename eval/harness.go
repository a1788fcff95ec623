package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/datastore"
	"github.com/exvulsec/safeguard/guard"
	"github.com/exvulsec/safeguard/utils"
)

// Case replays one historical transaction with a known-good verdict.
type Case struct {
	Safe       string `json:"safe"`
	SafeTxHash string `json:"safe_tx_hash"`
	ExpectedOK bool   `json:"expected_ok"`
}

type Result struct {
	Case
	GotOK   bool
	Match   bool
	Scored  bool
	Summary string
	Err     string
}

type Stats struct {
	Total    int
	Scored   int
	Correct  int
	Accuracy float64
}

// Harness replays a dataset of labelled transactions through the pipeline.
// Each case excludes its own hash from the fetched history so the pipeline
// never sees the answer it is being tested on. Results are scored offline,
// nothing is dispatched.
type Harness struct {
	pipeline *guard.Pipeline
	persist  bool
}

func NewHarness(pipeline *guard.Pipeline, persist bool) *Harness {
	return &Harness{pipeline: pipeline, persist: persist}
}

func LoadCases(path string) ([]Case, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s is err %v", path, err)
	}
	cases := []Case{}
	if err = json.Unmarshal(raw, &cases); err != nil {
		return nil, fmt.Errorf("unmarshal dataset %s is err %v", path, err)
	}
	return cases, nil
}

func (h *Harness) RunFile(ctx context.Context, path string) (*Stats, error) {
	cases, err := LoadCases(path)
	if err != nil {
		return nil, err
	}
	return h.Run(ctx, cases)
}

func (h *Harness) Run(ctx context.Context, cases []Case) (*Stats, error) {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		results = append(results, h.runCase(ctx, c))
	}

	stats := &Stats{Total: len(results)}
	for _, result := range results {
		if !result.Scored {
			continue
		}
		stats.Scored++
		if result.Match {
			stats.Correct++
		}
	}
	if stats.Scored > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Scored)
	}
	logrus.Infof("evaluated %d cases, scored %d, correct %d, accuracy %.2f%%",
		stats.Total, stats.Scored, stats.Correct, stats.Accuracy*100)

	if h.persist {
		if err := insertResults(ctx, results); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (h *Harness) runCase(ctx context.Context, c Case) Result {
	result := Result{Case: c}
	conclusion, err := h.pipeline.Run(ctx, c.Safe, c.SafeTxHash, c.SafeTxHash)
	if err != nil {
		result.Err = err.Error()
		logrus.Errorf("evaluate tx %s is err %v", c.SafeTxHash, err)
		return result
	}
	result.Scored = true
	result.GotOK = conclusion.AllOK
	result.Match = conclusion.AllOK == c.ExpectedOK
	result.Summary = conclusion.Summary
	logrus.Infof("tx %s expected ok=%t got ok=%t", c.SafeTxHash, c.ExpectedOK, result.GotOK)
	return result
}

func insertResults(ctx context.Context, results []Result) error {
	rows := make([][]any, 0, len(results))
	now := time.Now()
	for _, result := range results {
		rows = append(rows, []any{
			result.Safe, result.SafeTxHash, result.ExpectedOK,
			result.GotOK, result.Match, result.Scored, result.Err, now,
		})
	}
	tableName := utils.ComposeTableName(datastore.SchemaPublic, datastore.TableEvalResults)
	_, err := datastore.PGX().CopyFrom(ctx,
		pgx.Identifier{datastore.SchemaPublic, datastore.TableEvalResults},
		[]string{"safe_address", "safe_tx_hash", "expected_ok", "got_ok", "match", "scored", "error", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy eval results to %s is err %v", tableName, err)
	}
	return nil
}
