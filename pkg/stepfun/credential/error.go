package credential

import "fmt"

// ErrInvalidCredential は認証情報の設定値が不正であることを示します。
type ErrInvalidCredential struct {
	Field  string
	Reason string
}

func (e *ErrInvalidCredential) Error() string {
	return fmt.Sprintf("認証情報 '%s' が不正です: %s", e.Field, e.Reason)
}
