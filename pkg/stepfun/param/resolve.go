package param

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"
)

// Values はユーザーが設定したパラメータ値です。キーは Field.Name に対応します。
type Values map[string]any

// Resolved はアイテム1件分に解決済みのパラメータです。
// 現在のモードで有効なフィールドのみを含みます。
type Resolved map[string]any

// String は name の値を文字列として返します。存在しない場合は空文字です。
func (r Resolved) String(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Float は数値型フィールドの値を返します。
func (r Resolved) Float(name string) (float64, bool) {
	v, ok := r[name].(float64)
	return v, ok
}

// Has は name が解決結果に含まれるかを返します。
func (r Resolved) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// ----------------------------------------------------------------------
// 表示条件の導出
// ----------------------------------------------------------------------

// Relevant は、与えられた値の組み合わせにおいて有効なフィールドのみを宣言順に返します。
// 値が与えられていない制御フィールドはデフォルト値で評価します。
func Relevant(fields []Field, values Values) []Field {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	memo := make(map[string]bool, len(fields))
	var visible func(f Field, depth int) bool
	visible = func(f Field, depth int) bool {
		if v, ok := memo[f.Name]; ok {
			return v
		}
		// 循環した表示条件は無効扱い
		if depth > len(fields) {
			return false
		}
		result := true
		for ctrlName, allowed := range f.ShowWhen {
			ctrl, ok := byName[ctrlName]
			if !ok || !visible(ctrl, depth+1) {
				result = false
				break
			}
			current := stringify(valueOrDefault(ctrl, values))
			if !contains(allowed, current) {
				result = false
				break
			}
		}
		memo[f.Name] = result
		return result
	}

	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if visible(f, 0) {
			out = append(out, f)
		}
	}
	return out
}

// ----------------------------------------------------------------------
// アイテム単位の解決
// ----------------------------------------------------------------------

// ExpressionPrefix は値を式として評価することを示す接頭辞です。
const ExpressionPrefix = "="

// Resolve はアイテム1件分のパラメータを解決します。
//
// "=" で始まる文字列値は式として扱い、残りを text/template で評価します。式は data (アイテムのJSON) を参照できます。
// それ以外の文字列は "{{" を含んでいてもそのまま使います。
// 式の評価は表示条件を制御するフィールドと有効なフィールドに限られ、
// 有効なフィールドについて必須チェック、選択肢チェック、数値の範囲・精度の適用を行います。
func Resolve(fields []Field, values Values, data map[string]any) (Resolved, error) {
	if data == nil {
		data = map[string]any{}
	}

	controllers := make(map[string]bool)
	for _, f := range fields {
		for name := range f.ShowWhen {
			controllers[name] = true
		}
	}

	// 表示条件の判定に必要な制御フィールドを先に評価する
	evaluated := make(Values, len(fields))
	failed := make(map[string]error)
	for _, f := range fields {
		if !controllers[f.Name] {
			continue
		}
		v, err := evaluate(f, values, data)
		if err != nil {
			failed[f.Name] = err
			continue
		}
		if v != nil {
			evaluated[f.Name] = v
		}
	}

	relevant := Relevant(fields, evaluated)
	for _, f := range relevant {
		if err, ok := failed[f.Name]; ok {
			return nil, err
		}
		if controllers[f.Name] {
			continue
		}
		v, err := evaluate(f, values, data)
		if err != nil {
			return nil, err
		}
		if v != nil {
			evaluated[f.Name] = v
		}
	}

	resolved := make(Resolved)
	for _, f := range relevant {
		v, ok := evaluated[f.Name]

		switch f.Type {
		case TypeNumber:
			if !ok || isBlank(v) {
				if f.Required {
					return nil, &ErrRequiredParameter{Name: f.Name}
				}
				continue
			}
			n, err := toFloat(v)
			if err != nil {
				return nil, &ErrInvalidParameter{Name: f.Name, Reason: err.Error()}
			}
			if f.Min != nil && n < *f.Min {
				return nil, &ErrInvalidParameter{Name: f.Name, Reason: fmt.Sprintf("%v は最小値 %v 未満です", n, *f.Min)}
			}
			if f.Max != nil && n > *f.Max {
				return nil, &ErrInvalidParameter{Name: f.Name, Reason: fmt.Sprintf("%v は最大値 %v を超えています", n, *f.Max)}
			}
			if f.Precision > 0 {
				p := math.Pow(10, float64(f.Precision))
				n = math.Round(n*p) / p
			}
			resolved[f.Name] = n

		default:
			s := ""
			if ok {
				s = stringify(v)
			}
			if s == "" {
				if f.Required {
					return nil, &ErrRequiredParameter{Name: f.Name}
				}
				if !ok {
					continue
				}
			}
			if f.Type == TypeOptions && len(f.Options) > 0 && s != "" && !f.hasOption(s) {
				return nil, &ErrInvalidParameter{Name: f.Name, Reason: fmt.Sprintf("%q は選択肢にありません", s)}
			}
			resolved[f.Name] = s
		}
	}

	return resolved, nil
}

// ----------------------------------------------------------------------
// 内部ヘルパー関数
// ----------------------------------------------------------------------

func valueOrDefault(f Field, values Values) any {
	if v, ok := values[f.Name]; ok && v != nil {
		return v
	}
	return f.Default
}

// evaluate はフィールドの値 (未指定ならデフォルト) を返し、式であれば評価します。
func evaluate(f Field, values Values, data map[string]any) (any, error) {
	v := valueOrDefault(f, values)
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, ExpressionPrefix) {
		return v, nil
	}
	return render(f.Name, strings.TrimPrefix(s, ExpressionPrefix), data)
}

func render(name, expr string, data map[string]any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(expr)
	if err != nil {
		return "", &ErrExpression{Name: name, Expression: expr, WrappedErr: err}
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", &ErrExpression{Name: name, Expression: expr, WrappedErr: err}
	}
	return b.String(), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("数値ではありません: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("数値ではありません: %v", v)
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
