package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type ValidationError struct {
	Arg   string
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Arg, e.Cause)
}

type PathKind int

const (
	PathFile PathKind = iota
	PathDir
)

type ParsedPath struct {
	FullPath string
	Kind     PathKind
}

// ParseArgs validates the paths given to push. Each path must be a regular
// file or a directory; repeated paths are pushed once.
func ParseArgs(args []string) ([]ParsedPath, error) {
	if len(args) == 0 {
		return nil, &ValidationError{Arg: "<files>", Cause: "no files provided"}
	}

	var out []ParsedPath
	seen := make(map[string]bool)

	for _, raw := range args {
		p := filepath.Clean(raw)
		info, err := os.Stat(p)
		if err != nil {
			return nil, &ValidationError{Arg: raw, Cause: "not found or not accessible"}
		}

		var kind PathKind
		switch {
		case info.IsDir():
			kind = PathDir
		case info.Mode().IsRegular():
			kind = PathFile
		default:
			return nil, &ValidationError{Arg: raw, Cause: "not a regular file or directory"}
		}

		if seen[p] {
			continue
		}
		seen[p] = true

		out = append(out, ParsedPath{FullPath: p, Kind: kind})
	}

	return out, nil
}

// ParseFileID validates a file id argument.
func ParseFileID(raw string) (string, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return "", &ValidationError{Arg: raw, Cause: "not a file id"}
	}
	return strconv.FormatInt(n, 10), nil
}

// ParseParentID validates a --parent flag. Empty and "0" mean the root.
func ParseParentID(raw string) (string, error) {
	if raw == "" || raw == "0" {
		return RootID, nil
	}
	return ParseFileID(raw)
}
