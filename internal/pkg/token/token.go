package token

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// AdminTokenLength は幹事用トークンの長さ
// クライアントが選んだ値を信用せず、常にサーバー側で生成する
const AdminTokenLength = 32

// NewAdminToken は幹事用のケイパビリティトークンを生成する
func NewAdminToken() (string, error) {
	return gonanoid.Generate(alphabet, AdminTokenLength)
}
