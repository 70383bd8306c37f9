package handlers

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gylounge/internal/middleware"
	"github.com/joshua-takyi/gylounge/internal/models"
)

// statusURL builds the page location a form post redirects to, e.g.
// /home?booking=success#booking. The section is also the query key.
func statusURL(base, section, status string, extra ...[2]string) string {
	q := section + "=" + url.QueryEscape(status)
	for _, kv := range extra {
		if kv[1] != "" {
			q += "&" + kv[0] + "=" + url.QueryEscape(kv[1])
		}
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q + "#" + section
}

// wantsJSON reports whether the client asked for a JSON answer instead of a
// redirect.
func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON ||
		strings.HasPrefix(c.ContentType(), gin.MIMEJSON)
}

func withRequestID(c *gin.Context, resp models.ApiResponse) models.ApiResponse {
	if id, ok := c.Get(middleware.RequestIDKey); ok {
		resp.RequestID, _ = id.(string)
	}
	return resp
}
