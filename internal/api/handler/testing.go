package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tojiinoue/kanjikun/internal/api"
)

// NewTestEcho はハンドラーテスト用にバリデーター付きのEchoインスタンスを作成する
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	return e
}
