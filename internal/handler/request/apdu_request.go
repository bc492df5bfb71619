package request

// ApduRequest 一条十六进制编码的 APDU 命令
type ApduRequest struct {
	Data string `json:"data" binding:"required,hexbytes,max=522"` // 0x + 5 字节头 + 255 字节数据
}
