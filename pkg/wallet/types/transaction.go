package types

// Transaction types accepted in UnsignedTransaction.Type.
const (
	TxTypeLegacy     = "legacy"
	TxTypeAccessList = "access-list"
	TxTypeDynamicFee = "dynamic-fee"
)

// AccessTuple is one access list entry in hex form.
type AccessTuple struct {
	Address     string   `json:"address"`
	StorageKeys []string `json:"storage_keys"`
}

// UnsignedTransaction represents a transaction waiting to be signed.
// Integer fields are decimal strings in Drip; To may be CIP-37 base32 or 0x hex.
type UnsignedTransaction struct {
	Type  string `json:"type,omitempty"` // legacy (default), access-list, dynamic-fee
	To    string `json:"to"`
	Value string `json:"value"`
	Nonce uint64 `json:"nonce"`
	Gas   uint64 `json:"gas"`

	GasPrice             string `json:"gas_price,omitempty"`
	MaxPriorityFeePerGas string `json:"max_priority_fee_per_gas,omitempty"`
	MaxFeePerGas         string `json:"max_fee_per_gas,omitempty"`

	StorageLimit uint64        `json:"storage_limit"`
	EpochHeight  uint64        `json:"epoch_height"`
	ChainID      uint32        `json:"chain_id"`
	Data         string        `json:"data,omitempty"` // Contract Data (Hex)
	AccessList   []AccessTuple `json:"access_list,omitempty"`

	// DerivationPath selects the signing key, e.g. "m/44'/503'/0'/0/0"
	DerivationPath string `json:"derivation_path"`
}

// SignedTransaction represents the result of the signing process.
type SignedTransaction struct {
	TxHash string `json:"tx_hash"` // Transaction Hash
	RawTx  string `json:"raw_tx"`  // RLP Encoded Hex String (ready to broadcast)
	V      uint8  `json:"v"`
	R      string `json:"r"`
	S      string `json:"s"`
}
