package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MetricsBasicAuth は /metrics をBasic認証で保護する
// METRICS_USER / METRICS_PASSWORD が未設定の環境（ローカル開発）では素通しになる
func MetricsBasicAuth() echo.MiddlewareFunc {
	expectedUser := os.Getenv("METRICS_USER")
	expectedPass := os.Getenv("METRICS_PASSWORD")

	if expectedUser == "" || expectedPass == "" {
		return passthrough
	}

	return middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		// 比較時間から資格情報長を推測されないよう定数時間比較を使う
		userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(expectedUser)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(expectedPass)) == 1

		return userMatch && passMatch, nil
	})
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}
