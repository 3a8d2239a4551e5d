package vote

import "errors"

// Vote ドメインのエラー定義
var (
	ErrVoteNotFound    = errors.New("投票が見つかりません")
	ErrNameRequired    = errors.New("名前は必須です")
	ErrChoicesRequired = errors.New("回答は1件以上必要です")
	ErrInvalidResponse = errors.New("回答の形式が不正です")
)
