package transport

import (
	"github.com/daehan00/omechoo/api/models"
	"github.com/daehan00/omechoo/logging"
	"github.com/daehan00/omechoo/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"net/http"
	"os"
	"strings"
	"time"
)

const claimsKey = "room_claims"

func NewRouter(ginMode string, corsOrigins []string) *gin.Engine {
	gin.SetMode(ginMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(CORSMiddleware(corsOrigins))

	//Bypass swagger for non-local
	if os.Getenv("APP_ENV") == "local" {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	engine.NoRoute(NoRouteHandler())

	return engine
}

func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logging.Log.Infof("No routed request received for:%s", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, models.NewError(models.CodePageNotFound, "Page not found"))
	}
}

func bearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// BearerAuth rejects requests without a valid room token and stores the claims on the context.
func BearerAuth(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(models.CodeUnauthorized, "missing bearer token"))
			return
		}

		claims, err := issuer.Verify(raw)
		if err != nil {
			logging.Log.Warnf("AUTH: rejected token on %s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(models.CodeUnauthorized, err.Error()))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalBearerAuth stores the claims when a valid token is present and never aborts.
func OptionalBearerAuth(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearer(c); raw != "" {
			if claims, err := issuer.Verify(raw); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// RequireRoomMatch rejects tokens issued for a different room than the :id path parameter.
func RequireRoomMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok || claims.RoomID != c.Param("id") {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewError(models.CodeForbidden, "token does not belong to this room"))
			return
		}
		c.Next()
	}
}

func RequireHost() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok || !claims.IsHost {
			logging.Log.Warnf("AUTH: non-host attempted %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewError(models.CodeForbidden, "only the host can do this"))
			return
		}
		c.Next()
	}
}

func ClaimsFromContext(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok
}
