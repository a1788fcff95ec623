package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Reputation oracle status codes. Anything outside this set is a hard error.
const (
	OracleCodeSuccess         = 1
	OracleCodePartialData     = 2
	OracleCodeNonContract     = 2020
	OracleCodeNoData          = 2021
	OracleCodeTooManyRequests = 4029
)

type flagCheck struct {
	value  TriState
	reason string
}

func composeReasons(checks []flagCheck) []string {
	reasons := []string{}
	for _, check := range checks {
		if check.value == TriStateYes {
			reasons = append(reasons, check.reason)
		}
	}
	return reasons
}

// AddressSecurity is the oracle's general reputation verdict for an address.
// Every flag is tri-state, an absent flag is no signal.
type AddressSecurity struct {
	HoneypotRelatedAddress    TriState `json:"honeypot_related_address"`
	PhishingActivities        TriState `json:"phishing_activities"`
	BlacklistDoubt            TriState `json:"blacklist_doubt"`
	StealingAttack            TriState `json:"stealing_attack"`
	BlackmailActivities       TriState `json:"blackmail_activities"`
	Sanctioned                TriState `json:"sanctioned"`
	MoneyLaundering           TriState `json:"money_laundering"`
	Mixer                     TriState `json:"mixer"`
	Cybercrime                TriState `json:"cybercrime"`
	DarkwebTransactions       TriState `json:"darkweb_transactions"`
	MaliciousMiningActivities TriState `json:"malicious_mining_activities"`
	FinancialCrime            TriState `json:"financial_crime"`
	FakeKYC                   TriState `json:"fake_kyc"`
	GasAbuse                  TriState `json:"gas_abuse"`
}

func (as *AddressSecurity) MaliciousReasons() []string {
	return composeReasons([]flagCheck{
		{as.HoneypotRelatedAddress, "address is related to a honeypot"},
		{as.PhishingActivities, "address has phishing activities"},
		{as.BlacklistDoubt, "address is suspected of blacklist activities"},
		{as.StealingAttack, "address has stealing attacks"},
		{as.BlackmailActivities, "address has blackmail activities"},
		{as.Sanctioned, "address is sanctioned"},
		{as.MoneyLaundering, "address is involved in money laundering"},
		{as.Mixer, "address is a mixer"},
		{as.Cybercrime, "address is involved in cybercrime"},
		{as.DarkwebTransactions, "address has darkweb transactions"},
		{as.MaliciousMiningActivities, "address has malicious mining activities"},
		{as.FinancialCrime, "address is involved in financial crime"},
		{as.FakeKYC, "address is related to fake KYC"},
		{as.GasAbuse, "address abuses gas"},
	})
}

// TokenSecurity is the oracle's verdict for a fungible token contract.
type TokenSecurity struct {
	IsOpenSource         TriState `json:"is_open_source"`
	HiddenOwner          TriState `json:"hidden_owner"`
	IsHoneypot           TriState `json:"is_honeypot"`
	IsBlacklisted        TriState `json:"is_blacklisted"`
	CanTakeBackOwnership TriState `json:"can_take_back_ownership"`
	SelfDestruct         TriState `json:"selfdestruct"`
	IsAntiWhale          TriState `json:"is_anti_whale"`
	OwnerChangeBalance   TriState `json:"owner_change_balance"`
	TransferPausable     TriState `json:"transfer_pausable"`
	BuyTax               string   `json:"buy_tax"`
	SellTax              string   `json:"sell_tax"`
}

// taxAlertThreshold flags tokens taking more than 10% on a trade leg.
var taxAlertThreshold = decimal.NewFromFloat(0.1)

func (ts *TokenSecurity) MaliciousReasons() []string {
	reasons := composeReasons([]flagCheck{
		{ts.HiddenOwner, "token has a hidden owner"},
		{ts.IsHoneypot, "token is a honeypot"},
		{ts.IsBlacklisted, "token has a blacklist function"},
		{ts.CanTakeBackOwnership, "token ownership can be taken back"},
		{ts.SelfDestruct, "token contract can self-destruct"},
		{ts.IsAntiWhale, "token has anti-whale restrictions"},
		{ts.OwnerChangeBalance, "token owner can change holder balances"},
		{ts.TransferPausable, "token transfers can be paused"},
	})
	if ts.IsOpenSource == TriStateNo {
		reasons = append(reasons, "token contract is not open source")
	}
	if tax, ok := parseTax(ts.BuyTax); ok {
		reasons = append(reasons, fmt.Sprintf("token charges %s%% buy tax", tax))
	}
	if tax, ok := parseTax(ts.SellTax); ok {
		reasons = append(reasons, fmt.Sprintf("token charges %s%% sell tax", tax))
	}
	return reasons
}

func parseTax(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	tax, err := decimal.NewFromString(raw)
	if err != nil || tax.LessThanOrEqual(taxAlertThreshold) {
		return "", false
	}
	return tax.Mul(decimal.NewFromInt(100)).String(), true
}

// NFTSecurity is the oracle's verdict for an NFT contract.
type NFTSecurity struct {
	NFTOpenSource           TriState `json:"nft_open_source"`
	PrivilegedBurn          TriState `json:"privileged_burn"`
	SelfDestruct            TriState `json:"self_destruct"`
	TransferWithoutApproval TriState `json:"transfer_without_approval"`
	RestrictedApproval      TriState `json:"restricted_approval"`
	PrivilegedMinting       TriState `json:"privileged_minting"`
	MaliciousNFTContract    TriState `json:"malicious_nft_contract"`
}

func (ns *NFTSecurity) MaliciousReasons() []string {
	reasons := composeReasons([]flagCheck{
		{ns.PrivilegedBurn, "NFT can be burned by a privileged role"},
		{ns.SelfDestruct, "NFT contract can self-destruct"},
		{ns.TransferWithoutApproval, "NFT can be transferred without approval"},
		{ns.RestrictedApproval, "NFT approvals are restricted"},
		{ns.PrivilegedMinting, "NFT has privileged minting"},
		{ns.MaliciousNFTContract, "NFT contract is flagged as malicious"},
	})
	if ns.NFTOpenSource == TriStateNo {
		reasons = append(reasons, "NFT contract is not open source")
	}
	return reasons
}

type AddressSecurityResponse struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Result  *AddressSecurity `json:"result"`
}

type TokenSecurityResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Result  *TokenSecurity `json:"result"`
}

type NFTSecurityResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Result  *NFTSecurity `json:"result"`
}
