package database

import (
	"fmt"
	"strconv"
	"time"
)

// UserID identifies a user. It is the ownership key of every file.
type UserID int64

// FileID identifies a file. IDs grow monotonically in creation order.
type FileID int64

func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id FileID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseFileID parses a decimal file id. Only positive values are valid.
func ParseFileID(s string) (FileID, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return FileID(n), true
}

// ParseUserID parses a decimal user id. Only positive values are valid.
func ParseUserID(s string) (UserID, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return UserID(n), true
}

// User is a registered account.
type User struct {
	ID           UserID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// FileType is the closed set of file kinds.
type FileType uint8

const (
	FileTypeFolder FileType = iota + 1
	FileTypeFile
	FileTypeImage
)

var fileTypeNames = map[FileType]string{
	FileTypeFolder: "folder",
	FileTypeFile:   "file",
	FileTypeImage:  "image",
}

// ParseFileType maps the wire name of a file type to its value.
func ParseFileType(s string) (FileType, bool) {
	for t, name := range fileTypeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

func (t FileType) String() string {
	if name, ok := fileTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FileType(%d)", uint8(t))
}

// HasContent reports whether files of this type carry a blob in the content store.
func (t FileType) HasContent() bool {
	return t == FileTypeFile || t == FileTypeImage
}

// NeedsThumbnail reports whether uploads of this type schedule a thumbnail job.
func (t FileType) NeedsThumbnail() bool {
	return t == FileTypeImage
}

func (t FileType) MarshalText() ([]byte, error) {
	name, ok := fileTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown file type %d", uint8(t))
	}
	return []byte(name), nil
}

// ParentKind tells how a ParentRef should be interpreted.
type ParentKind uint8

const (
	// ParentRoot means the file sits at the top level.
	ParentRoot ParentKind = iota
	// ParentFolder means the file references another file by id.
	ParentFolder
	// ParentNone never matches any file. Malformed filters resolve to it.
	ParentNone
)

// ParentRef is the parent reference of a file.
type ParentRef struct {
	Kind ParentKind
	ID   FileID
}

var (
	RootParent = ParentRef{Kind: ParentRoot}
	NoParent   = ParentRef{Kind: ParentNone}
)

// ParentOf returns a reference to the folder with the given id.
func ParentOf(id FileID) ParentRef {
	return ParentRef{Kind: ParentFolder, ID: id}
}

// ParseParentRef parses a parent reference as sent by clients: empty or "0"
// for the root, a positive id otherwise. The second result is false for
// malformed input, in which case NoParent is returned.
func ParseParentRef(s string) (ParentRef, bool) {
	if s == "" || s == "0" {
		return RootParent, true
	}
	id, ok := ParseFileID(s)
	if !ok {
		return NoParent, false
	}
	return ParentOf(id), true
}

func (p ParentRef) IsRoot() bool { return p.Kind == ParentRoot }

// MarshalJSON renders the root as the number 0 and folders as their id string.
func (p ParentRef) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case ParentRoot:
		return []byte("0"), nil
	case ParentFolder:
		return []byte(strconv.Quote(p.ID.String())), nil
	default:
		return nil, fmt.Errorf("parent reference of kind %d is not serializable", p.Kind)
	}
}

// File is a stored file, image or folder.
type File struct {
	ID        FileID
	OwnerID   UserID
	Name      string
	Type      FileType
	IsPublic  bool
	Parent    ParentRef
	LocalPath string // empty for folders
	CreatedAt time.Time
}

// Stats holds aggregate counters.
type Stats struct {
	Users int64
	Files int64
}
