package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
)

// Pushed records one node created on the server.
type Pushed struct {
	Node   Node
	Remote *RemoteFile
}

// Push creates every node of the tree on the server under parentID.
// Directories are created before their contents so children can reference
// the new folder ids. It stops at the first failure and returns what was
// created so far.
func Push(ctx context.Context, c *Client, tree *Filetree, parentID string, public bool) ([]Pushed, error) {
	ids := make(map[*Dir]string)
	var pushed []Pushed

	for _, node := range tree.FlattenTree() {
		parent := parentID
		if d := container(node); d != nil {
			parent = ids[d]
		}

		req := NewFile{
			Name:     node.Name(),
			Type:     node.Type(),
			ParentID: parent,
			IsPublic: public,
		}
		if _, isDir := node.(*Dir); !isDir {
			content, err := os.ReadFile(node.Path())
			if err != nil {
				return pushed, fmt.Errorf("failed to read %s: %w", node.Path(), err)
			}
			req.Data = base64.StdEncoding.EncodeToString(content)
		}

		remote, err := c.CreateFile(ctx, req)
		if err != nil {
			return pushed, fmt.Errorf("failed to push %s: %w", node.Path(), err)
		}
		if d, ok := node.(*Dir); ok {
			ids[d] = remote.ID
		}
		pushed = append(pushed, Pushed{Node: node, Remote: remote})
	}

	return pushed, nil
}
