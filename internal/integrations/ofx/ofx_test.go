package ofx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatement = `<?xml version="1.0" encoding="UTF-8"?>
<OFX>
  <BANKMSGSRSV1>
    <STMTTRNRS>
      <STMTRS>
        <CURDEF>USD</CURDEF>
        <BANKTRANLIST>
          <STMTTRN>
            <TRNTYPE>DEBIT</TRNTYPE>
            <DTPOSTED>20250528</DTPOSTED>
            <TRNAMT>-42.00</TRNAMT>
          </STMTTRN>
        </BANKTRANLIST>
        <LEDGERBAL>
          <BALAMT>2517.43</BALAMT>
          <DTASOF>20250530120000.000[0:GMT]</DTASOF>
        </LEDGERBAL>
      </STMTRS>
    </STMTTRNRS>
  </BANKMSGSRSV1>
</OFX>`

func TestParseLedgerBalance(t *testing.T) {
	bal, err := ParseLedgerBalance([]byte(sampleStatement))
	require.NoError(t, err)

	assert.InDelta(t, 2517.43, bal.Amount, 1e-9)
	assert.Equal(t, time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC), bal.AsOf)
}

func TestParseLedgerBalanceMissing(t *testing.T) {
	_, err := ParseLedgerBalance([]byte(`<OFX><BANKMSGSRSV1></BANKMSGSRSV1></OFX>`))
	assert.Error(t, err)
}

func TestParseLedgerBalanceMalformed(t *testing.T) {
	_, err := ParseLedgerBalance([]byte(`<OFX><LEDGERBAL><BALAMT>`))
	assert.Error(t, err)
}

func TestParseLedgerBalanceBadDate(t *testing.T) {
	doc := `<OFX><LEDGERBAL><BALAMT>10.00</BALAMT><DTASOF>foo</DTASOF></LEDGERBAL></OFX>`
	_, err := ParseLedgerBalance([]byte(doc))
	assert.Error(t, err)
}
