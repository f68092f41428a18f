package v1

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/crowd_proximity_engine/internal/config"
)

const bearerPrefix = "Bearer "

// requestAPIKey достает ключ из X-API-Key, иначе из Authorization: Bearer
func requestAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimPrefix(header, bearerPrefix)
	}
	return ""
}

func knownAPIKey(keys []string, candidate string) bool {
	found := 0
	for _, key := range keys {
		found |= subtle.ConstantTimeCompare([]byte(key), []byte(candidate))
	}
	return found == 1
}

// APIKeyAuthMiddleware пропускает к изменяющим маршрутам только запросы с ключом из cfg.APIKeys
func APIKeyAuthMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := log.WithFields(logrus.Fields{
			"client_ip": c.ClientIP(),
			"path":      c.FullPath(),
		})

		key := requestAPIKey(c)
		switch {
		case key == "":
			entry.Warn("Request without API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key required"})
		case !knownAPIKey(cfg.APIKeys, key):
			entry.Warn("Request with unknown API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		default:
			c.Next()
		}
	}
}
