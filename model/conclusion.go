package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/exvulsec/safeguard/datastore"
	"github.com/exvulsec/safeguard/utils"
)

// VerificationOutcome is the single verdict a guard renders for one
// transaction. OK=false is a legitimate rejection, never an error.
type VerificationOutcome struct {
	GuardName        string `json:"guard_name"`
	GuardDescription string `json:"guard_description"`
	OK               bool   `json:"ok"`
	Reason           string `json:"reason"`
}

// ValidationConclusion aggregates the recorded outcomes for one transaction.
// Because the pipeline short-circuits, Outcomes may hold fewer entries than
// there are registered guards, guards after the first failure never ran.
type ValidationConclusion struct {
	Chain       string                `json:"chain"`
	SafeAddress string                `json:"safe_address"`
	SafeTxHash  string                `json:"safe_tx_hash"`
	AllOK       bool                  `json:"all_ok"`
	Outcomes    []VerificationOutcome `json:"outcomes"`
	Summary     string                `json:"summary"`
}

func NewValidationConclusion(chain, safeAddress, safeTxHash string, outcomes []VerificationOutcome) *ValidationConclusion {
	vc := &ValidationConclusion{
		Chain:       chain,
		SafeAddress: safeAddress,
		SafeTxHash:  safeTxHash,
		AllOK:       len(outcomes) > 0,
		Outcomes:    outcomes,
	}
	for _, outcome := range outcomes {
		if !outcome.OK {
			vc.AllOK = false
			break
		}
	}
	vc.Summary = vc.ComposeSummary()
	return vc
}

// ComposeSummary renders one bullet per recorded outcome.
func (vc *ValidationConclusion) ComposeSummary() string {
	verdict := "rejected"
	if vc.AllOK {
		verdict = "approved"
	}
	lines := []string{fmt.Sprintf("Safe transaction %s on %s is %s:", vc.SafeTxHash, vc.Chain, verdict)}
	for _, outcome := range vc.Outcomes {
		state := "FAIL"
		if outcome.OK {
			state = "PASS"
		}
		line := fmt.Sprintf("- [%s] %s", state, outcome.GuardName)
		if outcome.Reason != "" {
			line = fmt.Sprintf("%s: %s", line, outcome.Reason)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// GuardConclusion is the persisted audit row for a produced conclusion.
type GuardConclusion struct {
	ID          int64     `json:"id" gorm:"column:id;primaryKey"`
	Chain       string    `json:"chain" gorm:"column:chain"`
	SafeAddress string    `json:"safe_address" gorm:"column:safe_address"`
	SafeTxHash  string    `json:"safe_tx_hash" gorm:"column:safe_tx_hash"`
	AllOK       bool      `json:"all_ok" gorm:"column:all_ok"`
	Outcomes    []byte    `json:"outcomes" gorm:"column:outcomes"`
	Summary     string    `json:"summary" gorm:"column:summary"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (vc *ValidationConclusion) Insert() error {
	outcomes, err := json.Marshal(vc.Outcomes)
	if err != nil {
		return fmt.Errorf("marshal outcomes for tx %s is err %v", vc.SafeTxHash, err)
	}
	record := GuardConclusion{
		Chain:       vc.Chain,
		SafeAddress: vc.SafeAddress,
		SafeTxHash:  vc.SafeTxHash,
		AllOK:       vc.AllOK,
		Outcomes:    outcomes,
		Summary:     vc.Summary,
		CreatedAt:   time.Now(),
	}
	tableName := utils.ComposeTableName(datastore.SchemaPublic, datastore.TableGuardConclusions)
	return datastore.DB().Table(tableName).Create(&record).Error
}

type GuardConclusions []GuardConclusion

func (gcs *GuardConclusions) List(chain, safeAddress string, limit int) error {
	tableName := utils.ComposeTableName(datastore.SchemaPublic, datastore.TableGuardConclusions)
	return datastore.DB().Table(tableName).
		Where("chain = ? AND safe_address = ?", chain, safeAddress).
		Order("created_at DESC").
		Limit(limit).
		Find(gcs).Error
}
