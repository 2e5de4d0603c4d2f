package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/temirov/sdir/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	errorEncodeJSONFormat = "%w: encoding json: %w"
)

var errNilTree = errors.New("tree is nil")

// jsonNode is the document shape of one tree node. Children is a pointer so that
// directories always carry an array, possibly empty, while files omit it.
type jsonNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	IsDir    bool        `json:"is_dir"`
	Children *[]jsonNode `json:"children,omitempty"`
	Content  *string     `json:"content,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// RenderJSON renders the tree as an indented JSON document without HTML escaping.
func RenderJSON(root *types.TreeNode) (string, error) {
	if root == nil {
		return "", fmt.Errorf(errorEncodeJSONFormat, types.ErrRender, errNilTree)
	}
	document := toJSONNode(root)

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent(indentPrefix, indentSpacer)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return "", fmt.Errorf(errorEncodeJSONFormat, types.ErrRender, encodeError)
	}
	return string(bytes.TrimSuffix(buffer.Bytes(), []byte(lineBreak))), nil
}

func toJSONNode(node *types.TreeNode) jsonNode {
	document := jsonNode{
		Name:  node.Name,
		Path:  node.RelativePath,
		IsDir: node.IsDir(),
		Error: node.Error,
	}
	if node.IsDir() {
		children := make([]jsonNode, 0, len(node.Children))
		for _, child := range node.Children {
			if child == nil {
				continue
			}
			children = append(children, toJSONNode(child))
		}
		document.Children = &children
		return document
	}
	if node.Content != nil {
		content := *node.Content
		document.Content = &content
	}
	return document
}
