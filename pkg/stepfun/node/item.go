package node

// ----------------------------------------------------------------------
// データモデル (アイテム)
// ----------------------------------------------------------------------

// BinaryData はアイテムに添付されたバイナリ1件分です。
// Data が nil で Path が設定されている場合、ホストが必要に応じて読み込みます。
type BinaryData struct {
	ID            string `json:"id,omitempty"`
	Data          []byte `json:"-"`
	FileName      string `json:"fileName,omitempty"`
	MimeType      string `json:"mimeType,omitempty"`
	FileExtension string `json:"fileExtension,omitempty"`
	FileSize      int    `json:"fileSize,omitempty"`
	Path          string `json:"path,omitempty"`
}

// Item はノードへの入力1件です。
type Item struct {
	JSON   map[string]any        `json:"json"`
	Binary map[string]BinaryData `json:"binary,omitempty"`
}

// OutputItem はノードの出力1件です。PairedItem は対応する入力アイテムのインデックスです。
type OutputItem struct {
	JSON       map[string]any        `json:"json"`
	Binary     map[string]BinaryData `json:"binary,omitempty"`
	PairedItem int                   `json:"pairedItem"`
}
