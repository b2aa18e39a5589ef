package httpapi

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"voice-agent-console/pkg/logger"

	"github.com/gin-gonic/gin"
)

const SignatureHeader = "X-Webhook-Signature"

// maxWebhookBody bounds webhook payloads; transcripts of long calls stay well under it.
const maxWebhookBody = 2 << 20

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks body against a hex HMAC-SHA256 signature.
// An empty secret disables verification (local development).
func VerifySignature(secret string, body []byte, signature string) error {
	if secret == "" {
		return nil
	}
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if signature == "" {
		return errors.New("signature header missing")
	}
	if !hmac.Equal([]byte(Sign(secret, body)), []byte(strings.ToLower(signature))) {
		return errors.New("invalid signature")
	}
	return nil
}

// RequireSignature verifies X-Webhook-Signature and restores the body for the handler.
func RequireSignature(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		if err := VerifySignature(secret, body, c.GetHeader(SignatureHeader)); err != nil {
			logger.FromGin(c).Warn("webhook signature rejected", "path", c.Request.URL.Path, "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}
