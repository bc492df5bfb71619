package client

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"

	"signer-core/pkg/address"
	"signer-core/pkg/crypto_util"
	"signer-core/pkg/txparser"
	"signer-core/pkg/wallet/types"
)

var ErrInvalidTransaction = errors.New("client: invalid transaction")

// EncodeTransaction produces the unsigned wire bytes the signer hashes:
// rlp(fields) for legacy transactions, "cfx"||type||rlp(fields) otherwise.
func EncodeTransaction(tx types.UnsignedTransaction) ([]byte, error) {
	prefix, fields, err := wireFields(tx)
	if err != nil {
		return nil, err
	}
	body, err := rlp.EncodeToBytes(fields)
	if err != nil {
		return nil, err
	}
	return append(prefix, body...), nil
}

// AssembleSigned attaches a [v][r][s] signature and returns the broadcast
// form prefix||rlp([fields, v, r, s]) with its hash.
func AssembleSigned(tx types.UnsignedTransaction, vrs []byte) (types.SignedTransaction, error) {
	v, r, s, err := UnpackSignature(vrs)
	if err != nil {
		return types.SignedTransaction{}, err
	}
	prefix, fields, err := wireFields(tx)
	if err != nil {
		return types.SignedTransaction{}, err
	}
	body, err := rlp.EncodeToBytes([]interface{}{
		fields, uint64(v), new(big.Int).SetBytes(r[:]), new(big.Int).SetBytes(s[:]),
	})
	if err != nil {
		return types.SignedTransaction{}, err
	}
	raw := append(prefix, body...)
	hash := crypto_util.Keccak256(raw)
	return types.SignedTransaction{
		TxHash: hexutil.Encode(hash[:]),
		RawTx:  hexutil.Encode(raw),
		V:      v,
		R:      hexutil.Encode(r[:]),
		S:      hexutil.Encode(s[:]),
	}, nil
}

func wireFields(tx types.UnsignedTransaction) ([]byte, []interface{}, error) {
	to, err := parseAddress(tx.To)
	if err != nil {
		return nil, nil, err
	}
	value, err := parseAmount("value", tx.Value)
	if err != nil {
		return nil, nil, err
	}
	var data []byte
	if tx.Data != "" {
		if data, err = hexutil.Decode(withPrefix(tx.Data)); err != nil {
			return nil, nil, fmt.Errorf("%w: data: %v", ErrInvalidTransaction, err)
		}
	}
	accessList, err := parseAccessList(tx.AccessList)
	if err != nil {
		return nil, nil, err
	}

	switch tx.Type {
	case types.TxTypeLegacy, "":
		gasPrice, err := parseAmount("gas_price", tx.GasPrice)
		if err != nil {
			return nil, nil, err
		}
		if len(accessList) > 0 {
			return nil, nil, fmt.Errorf("%w: legacy transactions carry no access list", ErrInvalidTransaction)
		}
		return nil, []interface{}{
			tx.Nonce, gasPrice, tx.Gas, to, value,
			tx.StorageLimit, tx.EpochHeight, uint64(tx.ChainID), data,
		}, nil

	case types.TxTypeAccessList:
		gasPrice, err := parseAmount("gas_price", tx.GasPrice)
		if err != nil {
			return nil, nil, err
		}
		return typedPrefix(txparser.AccessList), []interface{}{
			tx.Nonce, gasPrice, tx.Gas, to, value,
			tx.StorageLimit, tx.EpochHeight, uint64(tx.ChainID), data, accessList,
		}, nil

	case types.TxTypeDynamicFee:
		tip, err := parseAmount("max_priority_fee_per_gas", tx.MaxPriorityFeePerGas)
		if err != nil {
			return nil, nil, err
		}
		feeCap, err := parseAmount("max_fee_per_gas", tx.MaxFeePerGas)
		if err != nil {
			return nil, nil, err
		}
		return typedPrefix(txparser.DynamicFee), []interface{}{
			tx.Nonce, tip, feeCap, tx.Gas, to, value,
			tx.StorageLimit, tx.EpochHeight, uint64(tx.ChainID), data, accessList,
		}, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, tx.Type)
	}
}

func typedPrefix(v txparser.Version) []byte {
	return []byte{'c', 'f', 'x', byte(v)}
}

func withPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}

// parseAddress accepts CIP-37 base32 or 0x hex.
func parseAddress(s string) (common.Address, error) {
	if strings.Contains(s, ":") {
		addr, _, err := address.DecodeBase32(s)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: to: %v", ErrInvalidTransaction, err)
		}
		return addr, nil
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: to %q", ErrInvalidTransaction, s)
	}
	return common.HexToAddress(s), nil
}

// parseAmount reads a non-negative decimal integer. Empty means zero.
func parseAmount(name, s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidTransaction, name, s)
	}
	return v, nil
}

func parseAccessList(list []types.AccessTuple) ([]txparser.AccessTuple, error) {
	out := make([]txparser.AccessTuple, 0, len(list))
	for _, entry := range list {
		addr, err := parseAddress(entry.Address)
		if err != nil {
			return nil, err
		}
		keys := make([]common.Hash, 0, len(entry.StorageKeys))
		for _, k := range entry.StorageKeys {
			b, err := hexutil.Decode(withPrefix(k))
			if err != nil || len(b) > common.HashLength {
				return nil, fmt.Errorf("%w: storage key %q", ErrInvalidTransaction, k)
			}
			keys = append(keys, common.BytesToHash(b))
		}
		out = append(out, txparser.AccessTuple{Address: addr, StorageKeys: keys})
	}
	return out, nil
}
