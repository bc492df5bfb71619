// Package approval renders signing requests for review and collects the
// user's decision.
package approval

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"signer-core/internal/session"
	"signer-core/pkg/address"
	"signer-core/pkg/bip32"
	"signer-core/pkg/txparser"
)

// dripDecimals is the exponent between Drip and CFX.
const dripDecimals = 18

// Field is one labelled line of a review screen.
type Field struct {
	Name  string
	Value string
}

// FormatCFX renders an amount in Drip as CFX without trailing zeros.
func FormatCFX(drip *big.Int) string {
	if drip == nil {
		drip = new(big.Int)
	}
	return decimal.NewFromBigInt(drip, -dripDecimals).String() + " CFX"
}

// TransactionFields lists what the user sees for a transaction. Data is only
// shown in detailed mode.
func TransactionFields(r session.Review, detailed bool) ([]Field, error) {
	tx := r.Tx
	if tx == nil {
		return nil, fmt.Errorf("approval: empty transaction")
	}
	to, err := address.EncodeBase32(tx.To, networkForChain(tx.ChainIDUint64()))
	if err != nil {
		return nil, fmt.Errorf("approval: encode recipient: %w", err)
	}

	fields := []Field{
		{"Amount", FormatCFX(tx.ValueBig())},
		{"To", to},
		{"Max Gas Fees", FormatCFX(tx.MaxGasFee())},
	}
	if fee := tx.MaxStorageFee(); fee.Sign() > 0 {
		fields = append(fields, Field{"Max Storage Fees", FormatCFX(fee)})
	}
	if detailed {
		if tx.HasData() {
			fields = append(fields, Field{"Data", "0x" + strings.ToUpper(common.Bytes2Hex(tx.Data()))})
		}
		if tx.Version != txparser.Legacy {
			fields = append(fields, Field{"Type", tx.Version.String()})
		}
		fields = append(fields,
			Field{"Nonce", tx.NonceBig().String()},
			Field{"Path", bip32.FormatPath(r.Path)},
		)
	}
	return fields, nil
}

// MessageFields shows printable messages as text and anything else as hex.
func MessageFields(r session.MessageReview) []Field {
	msg := string(r.Message)
	if !printable(msg) {
		msg = hexutil.Encode(r.Message)
	}
	return []Field{
		{"Message", msg},
		{"Path", bip32.FormatPath(r.Path)},
	}
}

// AddressFields shows the CIP-37 address of a public key.
func AddressFields(r session.AddressReview, networkID uint32) ([]Field, error) {
	raw, err := address.RawAddress(append([]byte{0x04}, r.PublicKey[:]...))
	if err != nil {
		return nil, err
	}
	addr, err := address.EncodeBase32(raw, networkID)
	if err != nil {
		return nil, err
	}
	return []Field{
		{"Address", addr},
		{"Path", bip32.FormatPath(r.Path)},
	}, nil
}

// networkForChain maps a chain id onto a CIP-37 network id.
func networkForChain(chainID uint64) uint32 {
	if chainID > uint64(^uint32(0)) {
		return address.MainnetID
	}
	return uint32(chainID)
}

func printable(s string) bool {
	for _, r := range s {
		if r == unicode.ReplacementChar || (!unicode.IsPrint(r) && r != '\n') {
			return false
		}
	}
	return true
}
