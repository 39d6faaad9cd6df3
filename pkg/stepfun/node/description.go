package node

import "github.com/shouni/go-stepfun/pkg/stepfun/param"

// CredentialRef はノードが要求する認証情報です。
type CredentialRef struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Description はノードの登録メタデータです。
type Description struct {
	DisplayName      string          `json:"displayName"`
	Name             string          `json:"name"`
	Group            []string        `json:"group"`
	Version          int             `json:"version"`
	Description      string          `json:"description"`
	Subtitle         string          `json:"subtitle,omitempty"`
	DocumentationURL string          `json:"documentationUrl,omitempty"`
	Icon             string          `json:"icon,omitempty"`
	Categories       []string        `json:"categories,omitempty"`
	Aliases          []string        `json:"alias,omitempty"`
	DefaultName      string          `json:"defaultName"`
	Credentials      []CredentialRef `json:"credentials"`
	Properties       []param.Field   `json:"properties"`
}
