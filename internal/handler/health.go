package handler

import (
	"github.com/gin-gonic/gin"

	"signer-core/internal/handler/response"
	"signer-core/pkg/config"
)

// HealthCheck 返回存活状态和应用版本
func HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "UP",
		"version": config.Global.App.Version,
		"service": config.Global.App.Name,
	})
}
