package core

import (
	"path/filepath"
	"strings"
)

// RootID is the parent id of top-level files.
const RootID = "0"

// File types understood by the server.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
	TypeImage  = "image"
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// DetectType returns the server-side type for a local file name.
func DetectType(name string) string {
	if imageExtensions[strings.ToLower(filepath.Ext(name))] {
		return TypeImage
	}
	return TypeFile
}

type Node interface {
	Path() string
	Name() string
	Type() string
}

type File struct {
	path string
	name string
	dir  *Dir
}

type Dir struct {
	path     string
	name     string
	children []Node
	parent   *Dir
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Type() string {
	return DetectType(f.name)
}

// Dir returns the directory containing f, or nil at the top level.
func (f *File) Dir() *Dir {
	return f.dir
}

func (d *Dir) Path() string {
	return d.path
}

func (d *Dir) Name() string {
	return d.name
}

func (d *Dir) Type() string {
	return TypeFolder
}

func (d *Dir) Children() []Node {
	return d.children
}

// Parent returns the directory containing d, or nil at the top level.
func (d *Dir) Parent() *Dir {
	return d.parent
}
