// Package web holds the HTML presentation helpers shared by the handlers: one-shot flash notices,
// the multi-template renderer and the embedded static assets.
package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// FlashCookie carries queued notices across a redirect.
const FlashCookie = "lighthouse.flash"

const (
	flashPendingKey = "web.flash.pending"
	// maxFlashes bounds the cookie size when a redirect loop keeps adding notices.
	maxFlashes = 8
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a notice shown once on the next rendered page.
type Flash struct {
	Kind string `json:"k"`
	Text string `json:"t"`
}

// AddFlash queues a notice for the next rendered page, including a page rendered later in this request.
func AddFlash(c *gin.Context, kind, text string) {
	pending := pendingFlashes(c)
	if len(pending) == 0 {
		pending = readFlashCookie(c)
	}
	pending = append(pending, Flash{Kind: kind, Text: text})
	if len(pending) > maxFlashes {
		pending = pending[len(pending)-maxFlashes:]
	}
	c.Set(flashPendingKey, pending)
	writeFlashCookie(c, pending)
}

// ConsumeFlashes returns the queued notices and clears them.
func ConsumeFlashes(c *gin.Context) []Flash {
	flashes := pendingFlashes(c)
	if len(flashes) == 0 {
		flashes = readFlashCookie(c)
	}
	c.Set(flashPendingKey, []Flash(nil))
	dropFlashCookie(c)
	if hasFlashCookie(c) {
		setFlashCookie(c, "", -1)
	}
	return flashes
}

// Redirect queues a notice and answers with 302 Found to location.
func Redirect(c *gin.Context, kind, text, location string) {
	AddFlash(c, kind, text)
	c.Redirect(http.StatusFound, location)
}

func pendingFlashes(c *gin.Context) []Flash {
	v, ok := c.Get(flashPendingKey)
	if !ok {
		return nil
	}
	f, _ := v.([]Flash)
	return f
}

func hasFlashCookie(c *gin.Context) bool {
	v, err := c.Cookie(FlashCookie)
	return err == nil && v != ""
}

func readFlashCookie(c *gin.Context) []Flash {
	v, err := c.Cookie(FlashCookie)
	if err != nil {
		return nil
	}
	return DecodeFlashes(v)
}

// DecodeFlashes parses a flash cookie value. A malformed value yields no notices.
func DecodeFlashes(v string) []Flash {
	if v == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}

func writeFlashCookie(c *gin.Context, flashes []Flash) {
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	setFlashCookie(c, base64.RawURLEncoding.EncodeToString(raw), 0)
}

// setFlashCookie replaces any flash cookie already queued on the response.
func setFlashCookie(c *gin.Context, value string, maxAge int) {
	dropFlashCookie(c)
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     FlashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   IsSecureRequest(c),
		SameSite: http.SameSiteLaxMode,
	})
}

func dropFlashCookie(c *gin.Context) {
	h := c.Writer.Header()
	queued := h.Values("Set-Cookie")
	if len(queued) == 0 {
		return
	}
	kept := make([]string, 0, len(queued))
	for _, v := range queued {
		if !strings.HasPrefix(v, FlashCookie+"=") {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		h.Del("Set-Cookie")
		return
	}
	h["Set-Cookie"] = kept
}

// IsSecureRequest reports whether the request arrived over TLS, directly or via a proxy header.
func IsSecureRequest(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}
