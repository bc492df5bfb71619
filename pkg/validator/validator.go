package validator

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TagHexBytes 校验 0x 前缀可选、长度为偶数的十六进制字符串
const TagHexBytes = "hexbytes"

var validate *validator.Validate

// Init 在 gin 的校验引擎上注册自定义规则，需在路由创建前调用
func Init() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validator: unexpected binding engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation(TagHexBytes, hexBytes); err != nil {
		return err
	}
	validate = v
	return nil
}

func hexBytes(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	_, err := hexutil.Decode(s)
	return err == nil
}

// GetErrorMsg 将校验错误翻译为用户可读的提示
func GetErrorMsg(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errMsgs []string
		for _, e := range validationErrors {
			field := e.Field()
			param := e.Param()

			switch e.Tag() {
			case "required":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不能为空", field))
			case TagHexBytes:
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是偶数长度的十六进制", field))
			case "min":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 长度至少为 %s", field, param))
			case "max":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 长度不能超过 %s", field, param))
			default:
				errMsgs = append(errMsgs, fmt.Sprintf("%s 校验失败 (%s)", field, e.Tag()))
			}
		}
		return strings.Join(errMsgs, "; ")
	}
	return "请求参数错误"
}
