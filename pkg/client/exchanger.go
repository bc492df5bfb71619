package client

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"signer-core/pkg/errno"
)

// Exchanger sends one command frame and returns the reply payload and
// status word.
type Exchanger interface {
	Exchange(ctx context.Context, apdu []byte) ([]byte, uint16, error)
}

// StatusError is a reply whose status word is not 0x9000.
type StatusError struct {
	SW uint16
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device replied %04X: %s", e.SW, errno.Lookup(e.SW).Message)
}

// Is lets errors.Is match a StatusError against an errno value.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(errno.Errno)
	return ok && t.Code == e.SW
}

func splitReply(reply []byte) ([]byte, uint16, error) {
	if len(reply) < 2 {
		return nil, 0, fmt.Errorf("client: reply too short (%d bytes)", len(reply))
	}
	n := len(reply) - 2
	return reply[:n], binary.BigEndian.Uint16(reply[n:]), nil
}

// Device is an in-process command handler such as the emulator dispatcher.
type Device interface {
	Exchange(raw []byte) []byte
}

// DeviceExchanger talks to an in-process Device.
type DeviceExchanger struct {
	Device Device
}

func (d DeviceExchanger) Exchange(ctx context.Context, apdu []byte) ([]byte, uint16, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return splitReply(d.Device.Exchange(apdu))
}

// HTTPExchanger talks to the emulator's POST /apdu endpoint.
type HTTPExchanger struct {
	URL    string
	Client *http.Client
}

func NewHTTPExchanger(baseURL string) *HTTPExchanger {
	return &HTTPExchanger{
		URL:    strings.TrimSuffix(baseURL, "/") + "/apdu",
		Client: &http.Client{Timeout: 5 * time.Minute}, // includes time spent on manual approval
	}
}

type apduEnvelope struct {
	Code    uint16 `json:"code"`
	Message string `json:"msg"`
	Data    string `json:"data"`
}

func (h *HTTPExchanger) Exchange(ctx context.Context, apdu []byte) ([]byte, uint16, error) {
	body, err := json.Marshal(map[string]string{"data": hexutil.Encode(apdu)})
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("client: post apdu: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("client: emulator returned HTTP %d", resp.StatusCode)
	}

	var env apduEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, 0, fmt.Errorf("client: decode reply: %w", err)
	}
	if env.Code != errno.OK.Code {
		return nil, 0, fmt.Errorf("client: emulator rejected frame: %s", env.Message)
	}
	reply, err := hexutil.Decode("0x" + env.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("client: decode reply: %w", err)
	}
	return splitReply(reply)
}
