package safe_random

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Reader 是密钥材料使用的随机源，默认为 crypto/rand.Reader。
// 测试可以替换为确定性的 Reader。
var Reader io.Reader = rand.Reader

// GenerateRandomBytes 生成指定长度的安全随机字节切片。
// 如果随机源失败或读取不足，将返回错误。
func GenerateRandomBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("随机字节长度不能为负: %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return nil, fmt.Errorf("生成随机字节失败: %w", err)
	}
	return b, nil
}

// Entropy 生成 BIP-39 熵。bitSize 必须是 32 的倍数且在 [128, 256] 之间。
func Entropy(bitSize int) ([]byte, error) {
	if bitSize%32 != 0 || bitSize < 128 || bitSize > 256 {
		return nil, fmt.Errorf("熵位数无效: %d", bitSize)
	}
	return GenerateRandomBytes(bitSize / 8)
}
