package main

import (
	"os"

	"go.uber.org/zap"

	"signer-core/internal/device"
	"signer-core/internal/server"
	"signer-core/pkg/config"
	"signer-core/pkg/logger"
	"signer-core/pkg/monitor"
)

func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 初始化监控指标
	monitor.Init()

	// 3. 组装签名设备 (terminal 模式下在本终端确认)
	dev, err := device.New(config.Global, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatal("签名设备初始化失败", zap.Error(err))
	}
	logger.Info("签名设备就绪",
		zap.String("app", config.Global.App.Name),
		zap.String("version", config.Global.App.Version),
		zap.String("approval", config.Global.Approval.Mode),
		zap.Bool("blind_signing", config.Global.Approval.BlindSigning))

	// 4. HTTP 路由
	router, err := server.NewHTTPRouter(dev)
	if err != nil {
		logger.Fatal("路由初始化失败", zap.Error(err))
	}

	// 5. 启动并等待退出信号
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, router)
	app.Run()
}
