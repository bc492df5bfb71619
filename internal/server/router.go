package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signer-core/internal/handler"
	"signer-core/pkg/monitor"
	"signer-core/pkg/validator"
)

// NewHTTPRouter 初始化并返回模拟器的 Gin Engine
func NewHTTPRouter(device handler.Exchanger) (*gin.Engine, error) {
	// 0. 初始化监控指标和参数校验
	monitor.Init()
	if err := validator.Init(); err != nil {
		return nil, err
	}

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 4. 设备路由
	apdu := handler.NewApduHandler(device)
	r.POST("/apdu", apdu.Exchange)

	return r, nil
}
