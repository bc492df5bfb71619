package address

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"signer-core/pkg/crypto_util"
)

// UserAddressType 外部账户地址的类型半字节
const UserAddressType = 0x10

var ErrInvalidPubKey = errors.New("invalid public key")

// CFXGenerator Conflux 地址生成器
type CFXGenerator struct {
	networkID uint32
}

func NewCFXGenerator(networkID uint32) *CFXGenerator {
	return &CFXGenerator{networkID: networkID}
}

// RawAddress 将公钥 (64 字节坐标对，或带 0x04 前缀的 65 字节) 转换为 20 字节账户地址。
// 与以太坊相同取 keccak256 的后 20 字节，再把最高 4 位置为用户类型 0x1。
func RawAddress(pub []byte) (common.Address, error) {
	if len(pub) == 65 && pub[0] == 0x04 {
		pub = pub[1:]
	}
	if len(pub) != 64 {
		return common.Address{}, ErrInvalidPubKey
	}
	hash := crypto_util.Keccak256(pub)

	var addr common.Address
	copy(addr[:], hash[12:])
	addr[0] = addr[0]&0x0f | UserAddressType
	return addr, nil
}

// PubKeyToAddress 返回 CIP-37 base32 地址
func (g *CFXGenerator) PubKeyToAddress(pub []byte) (string, error) {
	addr, err := RawAddress(pub)
	if err != nil {
		return "", err
	}
	return EncodeBase32(addr, g.networkID)
}

// PubKeyToHex 返回 EIP-55 校验和格式的十六进制地址
func (g *CFXGenerator) PubKeyToHex(pub []byte) (string, error) {
	addr, err := RawAddress(pub)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}
