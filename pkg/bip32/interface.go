package bip32

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ExtendedKey 包装了 BIP-32 扩展密钥
type ExtendedKey interface {
	// String 返回 Base58 编码的密钥字符串 (xprv... / xpub...)
	String() string
	// ECPubKey 用于获取底层的 EC 公钥
	ECPubKey() (*btcec.PublicKey, error)
	// ECPrivKey 用于获取底层的 EC 私钥 (用于签名)，调用方负责 Zero
	ECPrivKey() (*btcec.PrivateKey, error)
	// ChainCode 返回 32 字节链码的拷贝
	ChainCode() [32]byte
	// Derive 根据索引派生子密钥
	Derive(index uint32) (ExtendedKey, error)
	IsPrivate() bool
	// Neuter 返回对应的扩展公钥 (如果当前是私钥)
	Neuter() (ExtendedKey, error)
	// Zero 清除内存中的密钥材料，之后该密钥不可再用
	Zero()
}

// HDWallet 定义了分层确定性钱包的基本行为
type HDWallet interface {
	MasterKey() ExtendedKey
	// DerivePath 根据路径 (如 "m/44'/503'/0'/0/0") 派生密钥
	DerivePath(path string) (ExtendedKey, error)
	// Derive 按索引序列派生，中间密钥在返回前清除
	Derive(path []uint32) (ExtendedKey, error)
	Zero()
}

var (
	ErrInvalidSeed = errors.New("无效的种子")
	ErrInvalidPath = errors.New("无效的派生路径")
)
