package controllers

import (
	"github.com/daehan00/omechoo/api/models"
	"github.com/gin-gonic/gin"
	"net/http"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

func (c *HealthController) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/api/health", c.health)
}

// health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /api/health [get]
func (c *HealthController) health(g *gin.Context) {
	g.JSON(http.StatusOK, &models.HealthResponse{Status: "ok"})
}
