package bip32

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// HardenedKeyStart 第一个强化派生索引
const HardenedKeyStart = hdkeychain.HardenedKeyStart

// DefaultPath Conflux 第一个账户 (SLIP-44 币种 503)
const DefaultPath = "m/44'/503'/0'/0/0"

// ParsePath 解析路径字符串为索引序列
// 支持格式: m/44'/503'/0'/0/0 或 m/44h/503h/0h/0/0，"m" 表示空路径
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "m" {
		return []uint32{}, nil
	}
	path = strings.TrimPrefix(path, "m/")

	segments := strings.Split(path, "/")
	indices := make([]uint32, 0, len(segments))
	for _, segment := range segments {
		hardened := false
		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") {
			hardened = true
			segment = segment[:len(segment)-1]
		}

		val, err := strconv.ParseUint(segment, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: 路径段 '%s': %v", ErrInvalidPath, segment, err)
		}
		index := uint32(val)
		if hardened {
			if index >= HardenedKeyStart {
				return nil, fmt.Errorf("%w: 路径段 '%s' 超出范围", ErrInvalidPath, segment)
			}
			index += HardenedKeyStart
		}
		indices = append(indices, index)
	}
	return indices, nil
}

// FormatPath 将索引序列格式化为 m/... 字符串
func FormatPath(path []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, index := range path {
		b.WriteByte('/')
		if index >= HardenedKeyStart {
			b.WriteString(strconv.FormatUint(uint64(index-HardenedKeyStart), 10))
			b.WriteByte('\'')
		} else {
			b.WriteString(strconv.FormatUint(uint64(index), 10))
		}
	}
	return b.String()
}
