package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxActorKey = "actor" // string（JWTのsub）
	CtxRoleKey  = "role"  // string

	RoleAdmin = "ADMIN"
)

// bearerAuth用のJWT検証ミドルウェア。トークンはCLI（admin-token）で発行する。
func AuthJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//秘密鍵が無ければ管理APIは閉じる
			if secret == "" {
				return c.JSON(http.StatusServiceUnavailable, errorJSON("admin api disabled"))
			}

			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			scheme, rawToken, ok := strings.Cut(authz, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken = strings.TrimSpace(rawToken)
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			actor, err := parseString(claims["sub"])
			if err != nil || actor == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			role, err := parseString(claims["role"])
			if err != nil || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxActorKey, actor)
			c.Set(CtxRoleKey, role)

			return next(c)
		}
	}
}

// 監査ログ用の操作者
func ActorFromContext(c echo.Context) (string, bool) {
	actor, ok := c.Get(CtxActorKey).(string)
	if !ok || actor == "" {
		return "", false
	}
	return actor, true
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}
