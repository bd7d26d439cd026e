package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// CallerIDKey is the context key holding the authenticated caller id.
const CallerIDKey = "caller_id"

// TelegramAuth validates Telegram Mini App init-data from the "init_data"
// header and stores the caller's Telegram user id as an opaque string.
// Anonymous routes (share view, claim) are registered outside this
// middleware; everything behind it has a verified caller identity.
func TelegramAuth(botToken string, expIn time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if botToken == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "init-data validation is not configured"})
			return
		}

		raw := c.GetHeader("init_data")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
			return
		}

		if err := initdata.Validate(raw, botToken, expIn); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid init_data"})
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil || parsed.User.ID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid init_data format"})
			return
		}

		c.Set(CallerIDKey, strconv.FormatInt(parsed.User.ID, 10))
		c.Next()
	}
}

// CallerID returns the authenticated caller id set by TelegramAuth.
func CallerID(c *gin.Context) (string, bool) {
	id, ok := c.Get(CallerIDKey)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok && s != ""
}
