package host

import "fmt"

// ErrBinaryNotFound はアイテムに指定のバイナリが存在しないことを示します。
type ErrBinaryNotFound struct {
	Field string
}

func (e *ErrBinaryNotFound) Error() string {
	return fmt.Sprintf("バイナリプロパティ %q がアイテムに存在しません", e.Field)
}
