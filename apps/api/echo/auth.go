package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/user"
)

// token types carried in the token_type claim; only access tokens
// authenticate API calls, refresh tokens are exchanged for new pairs.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	jwtContextKey = "userToken"
)

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	TokenType string `json:"token_type"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	IsStaff   bool   `json:"is_staff,omitempty"`
}

func (c Claims) actor() access.Actor {
	return access.Actor{
		ID:            c.Subject,
		Role:          access.Role(c.Role),
		Staff:         c.IsStaff,
		Authenticated: true,
	}
}

func newUserClaims(conf *core.Config, usr user.User, tokenType string, delta time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(delta).Unix(),
			IssuedAt:  now.Unix(),
		},
		TokenType: tokenType,
		Email:     usr.Email,
		Role:      string(usr.Role),
		IsStaff:   usr.IsStaff || usr.IsSuperuser,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

// GenerateTokenPair returns a fresh access/refresh token pair for the user.
func GenerateTokenPair(conf *core.Config, usr user.User) (access, refresh string, err error) {
	access, err = GenerateToken(conf, newUserClaims(conf, usr, tokenTypeAccess, conf.Server.JWTAccessExpirationDelta))
	if err != nil {
		return "", "", err
	}
	refresh, err = GenerateToken(conf, newUserClaims(conf, usr, tokenTypeRefresh, conf.Server.JWTRefreshExpirationDelta))
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func authenticate(email, pwd string, svc user.Service) (user.User, error) {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errAuthenticationFailed
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return user.User{}, errAuthenticationFailed
	}
	if !usr.IsActive {
		return user.User{}, errAccountDeactivated
	}
	usr, err = svc.SetLastLogin(usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			// a refresh token is not a credential
			if claims.TokenType != tokenTypeAccess {
				return Claims{}, errUnauthorized
			}
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextActor(ctx echo.Context) (access.Actor, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return access.Anonymous(), err
	}
	return claims.actor(), nil
}

// parseRefreshToken validates a raw refresh token string and returns its claims.
func parseRefreshToken(conf *core.Config, tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil || !token.Valid || claims.TokenType != tokenTypeRefresh {
		return nil, errRefreshInvalid
	}
	return claims, nil
}
