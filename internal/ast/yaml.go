package ast

import (
	"gopkg.in/yaml.v3"
)

type yamlNode struct {
	Kind     string      `yaml:"kind"`
	Token    string      `yaml:"token,omitempty"`
	Text     string      `yaml:"text,omitempty"`
	Range    string      `yaml:"range"`
	Children []*yamlNode `yaml:"children,omitempty"`
}

func toYAMLNode(n *Node) *yamlNode {
	if n == nil {
		return nil
	}
	out := &yamlNode{Kind: n.Kind.String(), Range: n.Range.String()}
	if n.Token != nil {
		out.Token = n.Token.Kind.String()
		out.Text = n.Token.Text
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, toYAMLNode(child))
	}
	return out
}

// ToYAML serializes the tree for external tooling.
func ToYAML(n *Node) ([]byte, error) {
	return yaml.Marshal(toYAMLNode(n))
}
