// Package ofx extracts balance information from OFX 2.x (XML) bank
// statements so they can be recorded as balance checkpoints.
package ofx

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
)

// LedgerBalance is a statement's closing balance and the date it was
// asserted for.
type LedgerBalance struct {
	Amount float64
	AsOf   time.Time
}

// ParseLedgerBalance reads an OFX XML document and returns its ledger
// balance. It looks for the first LEDGERBAL element anywhere in the
// statement response.
func ParseLedgerBalance(doc []byte) (*LedgerBalance, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(doc); err != nil {
		return nil, fmt.Errorf("failed to parse OFX document: %v", err)
	}

	ledger := tree.FindElement("//LEDGERBAL")
	if ledger == nil {
		return nil, fmt.Errorf("no ledger balance found in statement")
	}

	amountElement := ledger.FindElement("./BALAMT")
	if amountElement == nil {
		return nil, fmt.Errorf("ledger balance has no amount")
	}
	amount, err := strconv.ParseFloat(amountElement.Text(), 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance amount: %v", err)
	}

	dateElement := ledger.FindElement("./DTASOF")
	if dateElement == nil {
		return nil, fmt.Errorf("ledger balance has no as-of date")
	}
	asOf, err := parseOFXDate(dateElement.Text())
	if err != nil {
		return nil, err
	}

	return &LedgerBalance{Amount: amount, AsOf: asOf}, nil
}

// parseOFXDate reads an OFX datetime. The OFX format allows YYYYMMDD with optional
// time and timezone suffixes; only the date part matters here since balances
// are bucketed to calendar days.
func parseOFXDate(s string) (time.Time, error) {
	if len(s) < 8 {
		return time.Time{}, fmt.Errorf("invalid OFX date %q", s)
	}
	t, err := time.ParseInLocation("20060102", s[:8], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid OFX date %q: %v", s, err)
	}
	return t, nil
}
