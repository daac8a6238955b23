package routes

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookieName = "goaltracker_flash"
	pendingFlashKey = "pending_flashes"
)

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// addFlash queues a message for the next page the browser renders, which is
// usually the target of a redirect.
func addFlash(c *gin.Context, cookies CookieSettings, category, message string) {
	pending := pendingFlashes(c)
	pending = append(pending, Flash{Category: category, Message: message})
	c.Set(pendingFlashKey, pending)

	data, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, base64.RawURLEncoding.EncodeToString(data), 300, "/", "", cookies.Secure, true)
}

func pendingFlashes(c *gin.Context) []Flash {
	if value, ok := c.Get(pendingFlashKey); ok {
		if flashes, ok := value.([]Flash); ok {
			return flashes
		}
	}
	return nil
}

// popFlashes returns the messages queued by a previous response and clears them.
func popFlashes(c *gin.Context, cookies CookieSettings) []Flash {
	value, err := c.Cookie(flashCookieName)
	if err != nil || value == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, "", -1, "/", "", cookies.Secure, true)

	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
