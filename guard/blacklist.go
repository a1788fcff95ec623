package guard

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/model"
)

const BlacklistGuardName = "blacklist"

// BlacklistGuard fails any transaction touching a known-malicious address.
// Pure set membership, no network calls, always cheap enough to run first.
type BlacklistGuard struct {
	addresses mapset.Set[string]
}

func NewBlacklistGuard(addresses []string) *BlacklistGuard {
	set := mapset.NewSet[string]()
	for _, address := range addresses {
		if common.IsHexAddress(address) {
			set.Add(strings.ToLower(address))
		}
	}
	return &BlacklistGuard{addresses: set}
}

// NewBlacklistGuardFromFile loads one address per line, '#' starts a comment.
func NewBlacklistGuardFromFile(path string) (*BlacklistGuard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blacklist file %s is err %v", path, err)
	}
	defer file.Close()

	addresses := []string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addresses = append(addresses, line)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("read blacklist file %s is err %v", path, err)
	}
	guard := NewBlacklistGuard(addresses)
	logrus.Infof("loaded %d blacklisted addresses from %s", guard.addresses.Cardinality(), path)
	return guard, nil
}

func (bg *BlacklistGuard) Name() string {
	return BlacklistGuardName
}

func (bg *BlacklistGuard) Description() string {
	return "checks the recipient and every related address against the static blacklist"
}

func (bg *BlacklistGuard) Evaluate(_ context.Context, gctx *Context) (*model.VerificationOutcome, error) {
	if bg.addresses.Contains(strings.ToLower(gctx.Pending.To)) {
		return outcome(bg, false, fmt.Sprintf("recipient %s is blacklisted", gctx.Pending.To)), nil
	}
	for _, address := range gctx.RelatedAddresses.ToSlice() {
		if bg.addresses.Contains(address) {
			return outcome(bg, false, fmt.Sprintf("related address %s is blacklisted", address)), nil
		}
	}
	return outcome(bg, true, ""), nil
}
