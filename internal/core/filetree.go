package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Filetree is the set of local files and directories selected for a push.
type Filetree struct {
	Roots []Node
}

// BuildFiletree walks every parsed path. Hidden entries inside directories
// are skipped.
func BuildFiletree(paths []ParsedPath) (*Filetree, error) {
	var roots []Node

	for _, parsedPath := range paths {
		if parsedPath.Kind == PathDir {
			dirNode, err := buildDirTree(parsedPath.FullPath)
			if err != nil {
				return nil, err
			}
			roots = append(roots, dirNode)
		} else {
			roots = append(roots, &File{
				path: parsedPath.FullPath,
				name: filepath.Base(parsedPath.FullPath),
			})
		}
	}

	if len(roots) == 0 {
		return nil, fmt.Errorf("no valid paths provided")
	}

	return &Filetree{Roots: roots}, nil
}

func buildDirTree(dirPath string) (*Dir, error) {
	dir := &Dir{
		path:     dirPath,
		name:     filepath.Base(dirPath),
		children: []Node{},
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		childPath := filepath.Join(dirPath, entry.Name())

		switch {
		case entry.IsDir():
			childDir, err := buildDirTree(childPath)
			if err != nil {
				return nil, err
			}
			childDir.parent = dir
			dir.children = append(dir.children, childDir)
		case entry.Type().IsRegular():
			dir.children = append(dir.children, &File{
				path: childPath,
				name: entry.Name(),
				dir:  dir,
			})
		}
	}

	return dir, nil
}

// FlattenTree returns every node in pre-order, so each directory comes
// before its contents.
func (ft *Filetree) FlattenTree() []Node {
	var nodes []Node
	var walk func(n Node)
	walk = func(n Node) {
		nodes = append(nodes, n)
		if d, ok := n.(*Dir); ok {
			for _, child := range d.children {
				walk(child)
			}
		}
	}
	for _, root := range ft.Roots {
		walk(root)
	}
	return nodes
}

// Counts returns the number of directories and files in the tree.
func (ft *Filetree) Counts() (dirs, files int) {
	for _, n := range ft.FlattenTree() {
		if _, ok := n.(*Dir); ok {
			dirs++
		} else {
			files++
		}
	}
	return dirs, files
}

// container returns the directory holding n inside the tree, or nil for roots.
func container(n Node) *Dir {
	switch v := n.(type) {
	case *File:
		return v.dir
	case *Dir:
		return v.parent
	}
	return nil
}
