package echoapi

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

const (
	contextClaimsKey = "claims"
	contextUserKey   = "user"
	tokenQueryParam  = "token"
)

// Claims are the identity provider's access token claims the API relies on.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// NewClaims returns the claims of an access token for subject, as the identity provider would issue it.
func NewClaims(conf *core.Config, subject, email string, ttl time.Duration) *Claims {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.Auth.JWTIssuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
	}
	if conf.Auth.JWTAudience != "" {
		claims.Audience = jwt.ClaimStrings{conf.Auth.JWTAudience}
	}
	return claims
}

// GenerateToken signs claims with the identity provider's secret.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(conf.Auth.JWTSecret))
	return ss, errors.Wrap(err, "signing token")
}

func newTokenParser(conf *core.Config) *jwt.Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if conf.Auth.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(conf.Auth.JWTAudience))
	}
	if conf.Auth.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(conf.Auth.JWTIssuer))
	}
	return jwt.NewParser(opts...)
}

// extractToken reads the bearer token, falling back to the query param browsers' websockets have to use.
func extractToken(ctx echo.Context) string {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ctx.QueryParam(tokenQueryParam)
}

// authMiddleware verifies the identity provider's access token and stores its Claims in the context.
func authMiddleware(conf *core.Config) echo.MiddlewareFunc {
	parser := newTokenParser(conf)
	secret := []byte(conf.Auth.JWTSecret)
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			raw := extractToken(ctx)
			if raw == "" {
				return core.ErrUnauthorized
			}
			claims := new(Claims)
			token, err := parser.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !token.Valid || claims.Subject == "" {
				return core.ErrUnauthorized
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

// profileMiddleware loads the active user.User of the token's subject into the context.
func profileMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if core.IsNotFound(err) {
					return errProfileRequired
				}
				return errors.Wrap(err, "getting context user")
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*Claims); ok {
		return claims, nil
	}
	return nil, core.ErrUnauthorized
}

// contextUser returns the user loaded by profileMiddleware.
func contextUser(ctx echo.Context) user.User {
	usr, _ := ctx.Get(contextUserKey).(user.User)
	return usr
}
