package crypto_util

import (
	"hash"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// PersonalMessagePrefix 是个人消息签名的域分隔前缀
const PersonalMessagePrefix = "\x19Conflux Signed Message:\n"

// Keccak256 计算输入的 Keccak256 哈希值 (以太坊/Conflux 使用的 legacy 变体)。
func Keccak256(data ...[]byte) [32]byte {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(out[:0])
	return out
}

// NewKeccak256 返回一个增量 Keccak256 哈希器，交易解析时按字节流写入。
func NewKeccak256() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// SumKeccak256 读取 h 当前的摘要，不会重置哈希器
func SumKeccak256(h hash.Hash) [32]byte {
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// PersonalMessageHash 对 前缀 + 十进制长度 + msg 做 Keccak256
func PersonalMessageHash(msg []byte) [32]byte {
	return Keccak256([]byte(PersonalMessagePrefix), []byte(strconv.Itoa(len(msg))), msg)
}
