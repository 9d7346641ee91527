package middleware

import (
	"net/http"
	"strings"

	"grifopos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ClaimsKey = "claims"

// Roles carried in the token.
const (
	RolTrabajador    = "trabajador"
	RolAdministrador = "administrador"
)

// JWTClaims are the custom claims of the station's access tokens. Tokens are
// minted by the identity provider; this service only validates them.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Nombre string `json:"nombre"`
	Rol    string `json:"rol"`
	jwt.RegisteredClaims
}

// Usuario is the id to attribute actions to, falling back to the subject.
func (c *JWTClaims) Usuario() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// JWTAuth validates the Bearer token on every protected route. Only HMAC
// tokens with an exp claim pass; issuer is checked when not empty.
func JWTAuth(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(secret)

	return func(c *gin.Context) {
		tokenStr, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida").Con("no_autenticado"))
			return
		}

		claims := &JWTClaims{}
		_, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) { return key, nil })
		if err != nil || claims.Rol == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado").Con("token_invalido"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes").Con("sin_permiso"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the typed claims set by JWTAuth, nil outside protected routes.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
