package attendance

import "errors"

// Attendance ドメインのエラー定義
var (
	ErrAttendanceNotFound = errors.New("出席情報が見つかりません")
	ErrNameRequired       = errors.New("出席者名は必須です")
)
