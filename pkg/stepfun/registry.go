package stepfun

import (
	"fmt"

	"github.com/shouni/go-stepfun/pkg/stepfun/asr"
	"github.com/shouni/go-stepfun/pkg/stepfun/credential"
	"github.com/shouni/go-stepfun/pkg/stepfun/node"
	"github.com/shouni/go-stepfun/pkg/stepfun/tts"
)

// Package はホストに登録するパッケージ全体のメタデータです。
type Package struct {
	Credentials []credential.Definition `json:"credentials"`
	Nodes       []node.Description      `json:"nodes"`
}

// Nodes は登録対象のノードを返します。
func Nodes() []node.Executor {
	return []node.Executor{tts.New(), asr.New()}
}

// Lookup は名前からノードを返します。
func Lookup(name string) (node.Executor, error) {
	for _, n := range Nodes() {
		if n.Description().Name == name {
			return n, nil
		}
	}
	return nil, fmt.Errorf("ノード %q は登録されていません", name)
}

// Describe はノードと認証情報の定義をまとめて返します。
func Describe() Package {
	p := Package{Credentials: []credential.Definition{credential.Describe()}}
	for _, n := range Nodes() {
		p.Nodes = append(p.Nodes, n.Description())
	}
	return p
}
