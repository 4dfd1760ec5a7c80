package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"livestream-pipeline/pkg/errno"
	"livestream-pipeline/pkg/restapi"
)

// BearerAuthMiddleware 校验 HS256 Bearer Token；secret 为空时直接放行
func BearerAuthMiddleware(secret, issuer string) gin.HandlerFunc {
	if strings.TrimSpace(secret) == "" {
		return func(c *gin.Context) { c.Next() }
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			restapi.Failed(c, errno.New(errno.ErrUnauthorized, "missing bearer token", nil))
			c.Abort()
			return
		}
		claims := jwt.RegisteredClaims{}
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			restapi.Failed(c, errno.New(errno.ErrUnauthorized, "", err))
			c.Abort()
			return
		}
		if claims.Subject != "" {
			c.Set("subject", claims.Subject)
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
