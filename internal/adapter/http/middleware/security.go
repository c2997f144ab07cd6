package middleware

import (
	"revpay/internal/core/domain"
	"revpay/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// SecurityNotifier creates a middleware that records a SECURITY notification
// for the authenticated account after sensitive operations succeed.
func SecurityNotifier(notificationSvc ports.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only notify on successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		message := securityMessage(c.Request.URL.Path, c.Request.Method)
		if message == "" {
			return
		}

		accountID, ok := AccountID(c)
		if !ok {
			return
		}

		_ = notificationSvc.Notify(c.Request.Context(), accountID, domain.NotificationKindSecurity, message)
	}
}

func securityMessage(path, method string) string {
	switch {
	case path == "/api/v1/auth/pin" && method == "PUT":
		return "Your transaction PIN was changed"
	case path == "/api/v1/payment-methods" && method == "POST":
		return "A new payment method was added to your account"
	}
	return ""
}
