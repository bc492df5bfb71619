package handler

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"signer-core/internal/handler/request"
	"signer-core/internal/handler/response"
	"signer-core/pkg/errno"
	"signer-core/pkg/validator"
)

// Exchanger 执行一条原始 APDU，返回 payload||SW
type Exchanger interface {
	Exchange(raw []byte) []byte
}

type ApduHandler struct {
	device Exchanger
}

func NewApduHandler(device Exchanger) *ApduHandler {
	return &ApduHandler{device: device}
}

// Exchange 转发一条 APDU 到模拟设备
// 设备状态字附在返回数据末尾，code 只反映传输层结果
func (h *ApduHandler) Exchange(c *gin.Context) {
	var req request.ApduRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.Errno{Code: errno.WrongApduLength.Code, Message: validator.GetErrorMsg(err)})
		return
	}

	data := req.Data
	if !strings.HasPrefix(data, "0x") && !strings.HasPrefix(data, "0X") {
		data = "0x" + data
	}
	raw, err := hexutil.Decode(data)
	if err != nil {
		response.Error(c, errno.InvalidData)
		return
	}

	reply := h.device.Exchange(raw)
	response.Success(c, strings.TrimPrefix(hexutil.Encode(reply), "0x"))
}
