package param

// ----------------------------------------------------------------------
// フィールド定義
// ----------------------------------------------------------------------

// FieldType はパラメータの値の種類です。
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeSecret  FieldType = "secret"
	TypeOptions FieldType = "options"
	TypeNumber  FieldType = "number"
)

// Option は選択肢型フィールドの1項目です。音声一覧の動的ロード結果にも使います。
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Field はノードまたは認証情報が受け付けるパラメータ1つ分の宣言です。
// Default が nil のフィールドは、値が与えられない限り解決結果に含まれません。
type Field struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Type        FieldType `json:"type"`
	Default     any       `json:"default,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Description string    `json:"description,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`

	// 選択肢型: Options が空で LoadOptionsMethod が設定されている場合は動的ロード
	Options           []Option `json:"options,omitempty"`
	LoadOptionsMethod string   `json:"loadOptionsMethod,omitempty"`

	// 数値型
	Min       *float64 `json:"minValue,omitempty"`
	Max       *float64 `json:"maxValue,omitempty"`
	Precision int      `json:"numberPrecision,omitempty"`

	// ShowWhen は、指定したフィールドの値がいずれかに一致する場合のみこのフィールドが有効であることを示します。
	ShowWhen map[string][]string `json:"showWhen,omitempty"`
}

// Float は数値型フィールドの境界値指定用ヘルパーです。
func Float(v float64) *float64 {
	return &v
}

// hasOption は静的な選択肢に value が含まれるかを返します。
func (f Field) hasOption(value string) bool {
	for _, o := range f.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}
