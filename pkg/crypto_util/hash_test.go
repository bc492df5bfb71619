package crypto_util

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestKeccak256(t *testing.T) {
	input := []byte("hello world")

	got := Keccak256(input)
	want := "47173285a8d7341e5e972fc677286384f802f8ef42a5ec5f03bbfa254cb01fad"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("Keccak256 不匹配: 得到 %x, 期望 %s", got, want)
	}

	// 分段写入与一次写入结果相同
	split := Keccak256(input[:5], input[5:])
	if split != got {
		t.Errorf("分段 Keccak256 不匹配: %x", split)
	}

	h := NewKeccak256()
	h.Write(input[:3])
	h.Write(input[3:])
	if SumKeccak256(h) != got {
		t.Errorf("增量 Keccak256 不匹配")
	}
	// Sum must not reset the running state
	if SumKeccak256(h) != got {
		t.Errorf("second Sum differs")
	}
}

func TestPersonalMessageHash(t *testing.T) {
	msg := []byte("Hello Conflux")
	got := PersonalMessageHash(msg)
	want := crypto.Keccak256([]byte("\x19Conflux Signed Message:\n13Hello Conflux"))
	if hex.EncodeToString(got[:]) != hex.EncodeToString(want) {
		t.Errorf("PersonalMessageHash = %x, want %x", got, want)
	}
}
