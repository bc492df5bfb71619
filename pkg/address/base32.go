package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// 具名前缀的 CIP-37 网络 id
const (
	MainnetID uint32 = 1029
	TestnetID uint32 = 1
)

const (
	mainnetPrefix   = "cfx"
	testnetPrefix   = "cfxtest"
	networkIDPrefix = "net"

	charset        = "abcdefghjkmnprstuvwxyz0123456789"
	checksumLen    = 8
	versionByte160 = 0x00
)

var (
	ErrInvalidAddress = errors.New("invalid base32 address")
	ErrChecksum       = errors.New("base32 address checksum mismatch")
)

var generators = [5]uint64{0x98f2bc8e61, 0x79b76d99e2, 0xf33e5fb3c4, 0xae2eabe2a8, 0x1e4f43e470}

// NetworkPrefix 返回网络 id 对应的可读前缀
func NetworkPrefix(networkID uint32) string {
	switch networkID {
	case MainnetID:
		return mainnetPrefix
	case TestnetID:
		return testnetPrefix
	default:
		return networkIDPrefix + strconv.FormatUint(uint64(networkID), 10)
	}
}

func parsePrefix(prefix string) (uint32, error) {
	switch prefix {
	case mainnetPrefix:
		return MainnetID, nil
	case testnetPrefix:
		return TestnetID, nil
	}
	if !strings.HasPrefix(prefix, networkIDPrefix) {
		return 0, fmt.Errorf("%w: unknown prefix %q", ErrInvalidAddress, prefix)
	}
	id, err := strconv.ParseUint(prefix[len(networkIDPrefix):], 10, 32)
	if err != nil || uint32(id) == MainnetID || uint32(id) == TestnetID {
		return 0, fmt.Errorf("%w: bad network id in %q", ErrInvalidAddress, prefix)
	}
	return uint32(id), nil
}

// EncodeBase32 将 20 字节地址编码为 "prefix:payload"
func EncodeBase32(addr common.Address, networkID uint32) (string, error) {
	prefix := NetworkPrefix(networkID)

	payload, err := bech32.ConvertBits(append([]byte{versionByte160}, addr[:]...), 8, 5, true)
	if err != nil {
		return "", err
	}
	sum := checksum(prefix, payload)

	var b strings.Builder
	b.Grow(len(prefix) + 1 + len(payload) + checksumLen)
	b.WriteString(prefix)
	b.WriteByte(':')
	for _, v := range payload {
		b.WriteByte(charset[v])
	}
	for i := checksumLen - 1; i >= 0; i-- {
		b.WriteByte(charset[(sum>>(uint(i)*5))&31])
	}
	return b.String(), nil
}

// DecodeBase32 解析 "prefix:payload"，忽略大小写以及可选的
// type 段 ("cfx:type.user:...")
func DecodeBase32(s string) (common.Address, uint32, error) {
	var addr common.Address

	s = strings.ToLower(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return addr, 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	prefix, body := parts[0], parts[len(parts)-1]
	networkID, err := parsePrefix(prefix)
	if err != nil {
		return addr, 0, err
	}
	if len(body) <= checksumLen {
		return addr, 0, fmt.Errorf("%w: too short", ErrInvalidAddress)
	}

	values := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		idx := strings.IndexByte(charset, body[i])
		if idx < 0 {
			return addr, 0, fmt.Errorf("%w: invalid character %q", ErrInvalidAddress, body[i])
		}
		values[i] = byte(idx)
	}
	payload, sumChars := values[:len(values)-checksumLen], values[len(values)-checksumLen:]

	var got uint64
	for _, v := range sumChars {
		got = got<<5 | uint64(v)
	}
	if got != checksum(prefix, payload) {
		return addr, 0, ErrChecksum
	}

	raw, err := bech32.ConvertBits(payload, 5, 8, false)
	if err != nil {
		return addr, 0, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != 1+common.AddressLength || raw[0] != versionByte160 {
		return addr, 0, fmt.Errorf("%w: unexpected payload", ErrInvalidAddress)
	}
	copy(addr[:], raw[1:])
	return addr, networkID, nil
}

func checksum(prefix string, payload []byte) uint64 {
	data := make([]byte, 0, len(prefix)+1+len(payload)+checksumLen)
	for i := 0; i < len(prefix); i++ {
		data = append(data, prefix[i]&0x1f)
	}
	data = append(data, 0)
	data = append(data, payload...)
	data = append(data, make([]byte, checksumLen)...)
	return polymod(data)
}

func polymod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		for i, g := range generators {
			if c0&(1<<uint(i)) != 0 {
				c ^= g
			}
		}
	}
	return c ^ 1
}
