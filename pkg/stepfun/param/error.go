package param

import "fmt"

// ErrInvalidParameter はパラメータ値が宣言に合わないことを示します。
type ErrInvalidParameter struct {
	Name   string
	Reason string
}

func (e *ErrInvalidParameter) Error() string {
	return fmt.Sprintf("パラメータ '%s' が不正です: %s", e.Name, e.Reason)
}

// ErrRequiredParameter は有効な必須パラメータに値がないことを示します。
type ErrRequiredParameter struct {
	Name string
}

func (e *ErrRequiredParameter) Error() string {
	return fmt.Sprintf("パラメータ '%s' は必須です", e.Name)
}

// ErrExpression は式 (="{{...}}") の解析または評価に失敗したことを示します。
type ErrExpression struct {
	Name       string
	Expression string
	WrappedErr error
}

func (e *ErrExpression) Error() string {
	return fmt.Sprintf("パラメータ '%s' の式 %q を評価できません: %v", e.Name, e.Expression, e.WrappedErr)
}

func (e *ErrExpression) Unwrap() error {
	return e.WrappedErr
}
