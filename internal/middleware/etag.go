package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type bufferedWriter struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *bufferedWriter) WriteHeader(code int) {
	w.status = code
}

func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	return w.body.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	return w.status
}

func (w *bufferedWriter) Size() int {
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool {
	return w.body.Len() > 0
}

// ETag buffers successful GET JSON responses, tags them with a weak ETag over
// the body and answers a matching If-None-Match with 304.
func ETag() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		original := c.Writer
		buffered := &bufferedWriter{ResponseWriter: original, status: http.StatusOK}
		c.Writer = buffered
		defer func() {
			if r := recover(); r != nil {
				c.Writer = original
				panic(r)
			}
		}()
		c.Next()
		c.Writer = original

		body := buffered.body.Bytes()
		isJSON := strings.HasPrefix(original.Header().Get("Content-Type"), "application/json")
		if buffered.status != http.StatusOK || !isJSON {
			original.WriteHeader(buffered.status)
			_, _ = original.Write(body)
			return
		}

		tag := weakETag(body)
		original.Header().Set("ETag", tag)
		if matchesETag(c.GetHeader("If-None-Match"), tag) {
			original.Header().Del("Content-Type")
			original.WriteHeader(http.StatusNotModified)
			original.WriteHeaderNow()
			return
		}
		original.WriteHeader(http.StatusOK)
		_, _ = original.Write(body)
	}
}

func weakETag(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

func matchesETag(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == tag || "W/"+candidate == tag {
			return true
		}
	}
	return false
}
