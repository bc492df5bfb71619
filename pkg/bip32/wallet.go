package bip32

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// BTCKeychain 实现了 ExtendedKey 接口，封装了 hdkeychain.ExtendedKey
type BTCKeychain struct {
	key *hdkeychain.ExtendedKey
}

func (k *BTCKeychain) String() string {
	return k.key.String()
}

func (k *BTCKeychain) ECPubKey() (*btcec.PublicKey, error) {
	return k.key.ECPubKey()
}

func (k *BTCKeychain) ECPrivKey() (*btcec.PrivateKey, error) {
	return k.key.ECPrivKey()
}

func (k *BTCKeychain) ChainCode() [32]byte {
	var cc [32]byte
	copy(cc[:], k.key.ChainCode())
	return cc
}

func (k *BTCKeychain) Derive(index uint32) (ExtendedKey, error) {
	child, err := k.key.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("派生子密钥失败: %w", err)
	}
	return &BTCKeychain{key: child}, nil
}

func (k *BTCKeychain) IsPrivate() bool {
	return k.key.IsPrivate()
}

func (k *BTCKeychain) Neuter() (ExtendedKey, error) {
	pub, err := k.key.Neuter()
	if err != nil {
		return nil, fmt.Errorf("转换公钥失败: %w", err)
	}
	return &BTCKeychain{key: pub}, nil
}

func (k *BTCKeychain) Zero() {
	k.key.Zero()
}

// Wallet 实现 HDWallet 接口
type Wallet struct {
	masterKey *BTCKeychain
}

// NewMasterKeyFromSeed 使用 BIP-39 种子生成主密钥
// network 只影响序列化版本号，nil 时使用 chaincfg.MainNetParams
func NewMasterKeyFromSeed(seed []byte, network *chaincfg.Params) (*Wallet, error) {
	if len(seed) < hdkeychain.MinSeedBytes || len(seed) > hdkeychain.MaxSeedBytes {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &chaincfg.MainNetParams
	}

	master, err := hdkeychain.NewMaster(seed, network)
	if err != nil {
		return nil, fmt.Errorf("生成主密钥失败: %w", err)
	}
	return &Wallet{masterKey: &BTCKeychain{key: master}}, nil
}

func (w *Wallet) MasterKey() ExtendedKey {
	return w.masterKey
}

// DerivePath 解析路径并派生密钥
func (w *Wallet) DerivePath(path string) (ExtendedKey, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return w.Derive(indices)
}

// Derive 沿索引序列逐级派生。空路径返回主密钥本身。
func (w *Wallet) Derive(path []uint32) (ExtendedKey, error) {
	var current ExtendedKey = w.masterKey
	for i, index := range path {
		next, err := current.Derive(index)
		if current != ExtendedKey(w.masterKey) {
			current.Zero()
		}
		if err != nil {
			return nil, fmt.Errorf("%w: 第 %d 级: %v", ErrInvalidPath, i, err)
		}
		current = next
	}
	return current, nil
}

// Zero 清除主密钥
func (w *Wallet) Zero() {
	w.masterKey.Zero()
}
