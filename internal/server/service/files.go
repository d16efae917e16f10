package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"filekeep/internal/server/database"
	"filekeep/internal/server/queue"
	"filekeep/internal/server/storage"
)

// PageSize is the number of files returned per listing page.
const PageSize = 20

const defaultContentType = "application/octet-stream"

// FileInfo is the metadata view of a file returned by the API.
type FileInfo struct {
	ID       database.FileID    `json:"id,string"`
	UserID   database.UserID    `json:"userId,string"`
	Name     string             `json:"name"`
	Type     database.FileType  `json:"type"`
	IsPublic bool               `json:"isPublic"`
	ParentID database.ParentRef `json:"parentId"`
}

func newFileInfo(f *database.File) *FileInfo {
	return &FileInfo{
		ID:       f.ID,
		UserID:   f.OwnerID,
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: f.Parent,
	}
}

// CreateFileInput is a file creation request. ParentID is the textual form
// of the parent reference; empty or "0" means the root.
type CreateFileInput struct {
	Name     string
	Type     string
	ParentID string
	IsPublic bool
	Data     string
}

// Content is an open file body ready to be streamed.
type Content struct {
	Body        io.ReadCloser
	ContentType string
	Name        string
}

// FileService contains the file lifecycle and access rules.
type FileService struct {
	repo  FileRepository
	store storage.Store
	jobs  JobQueue
}

// NewFileService creates a new file service.
func NewFileService(repo FileRepository, store storage.Store, jobs JobQueue) *FileService {
	return &FileService{
		repo:  repo,
		store: store,
		jobs:  jobs,
	}
}

// Create validates the request, writes content for non-folders, records the
// metadata and schedules a thumbnail job for images. A blob written before a
// failed metadata insert is left for the orphan sweeper.
func (s *FileService) Create(ctx context.Context, owner database.UserID, in CreateFileInput) (*FileInfo, error) {
	// 1. Validate
	if in.Name == "" {
		return nil, invalid("Missing name")
	}
	fileType, ok := database.ParseFileType(in.Type)
	if !ok {
		return nil, invalid("Missing type")
	}
	if fileType.HasContent() && in.Data == "" {
		return nil, invalid("Missing data")
	}
	parent, ok := database.ParseParentRef(in.ParentID)
	if !ok {
		return nil, invalid("Invalid parentId")
	}

	file := &database.File{
		OwnerID:  owner,
		Name:     in.Name,
		Type:     fileType,
		IsPublic: in.IsPublic,
		Parent:   parent,
	}

	// 2. Persist content
	if fileType.HasContent() {
		decoded, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			return nil, invalid("Invalid data")
		}
		path, n, err := s.store.Save(bytes.NewReader(decoded))
		if err != nil {
			return nil, fmt.Errorf("failed to store content: %w", err)
		}
		file.LocalPath = path
		slog.Debug("content stored", "path", path, "bytes", n)
	}

	// 3. Persist metadata
	if err := s.repo.CreateFile(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	// 4. Schedule thumbnails
	if fileType.NeedsThumbnail() {
		job := queue.NewThumbnailJob(owner, file.ID)
		if err := s.jobs.Enqueue(ctx, queue.Thumbnails, job); err != nil {
			slog.Error("failed to enqueue thumbnail job", "file_id", file.ID, "error", err)
		}
	}

	slog.Info("file created",
		"id", file.ID,
		"owner", owner,
		"type", fileType,
	)

	return newFileInfo(file), nil
}

// Show returns one of the owner's files.
func (s *FileService) Show(ctx context.Context, owner database.UserID, rawID string) (*FileInfo, error) {
	id, ok := database.ParseFileID(rawID)
	if !ok {
		return nil, ErrNotFound
	}
	file, err := s.repo.GetOwnedFile(ctx, id, owner)
	if err != nil {
		return nil, notFoundOr(err, "failed to get file")
	}
	return newFileInfo(file), nil
}

// Index returns one page of the owner's files under a parent, newest first.
// A malformed parent matches nothing; a malformed page reads as 0.
func (s *FileService) Index(ctx context.Context, owner database.UserID, rawParent, rawPage string) ([]*FileInfo, error) {
	parent, _ := database.ParseParentRef(rawParent)
	page := parsePage(rawPage)

	if page > math.MaxInt/PageSize {
		return []*FileInfo{}, nil
	}

	files, err := s.repo.ListFiles(ctx, owner, parent, page*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	infos := make([]*FileInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, newFileInfo(f))
	}
	return infos, nil
}

// Publish makes an owned file's content readable by anyone.
func (s *FileService) Publish(ctx context.Context, owner database.UserID, rawID string) (*FileInfo, error) {
	return s.setVisibility(ctx, owner, rawID, true)
}

// Unpublish restricts an owned file's content to its owner.
func (s *FileService) Unpublish(ctx context.Context, owner database.UserID, rawID string) (*FileInfo, error) {
	return s.setVisibility(ctx, owner, rawID, false)
}

func (s *FileService) setVisibility(ctx context.Context, owner database.UserID, rawID string, public bool) (*FileInfo, error) {
	id, ok := database.ParseFileID(rawID)
	if !ok {
		return nil, ErrNotFound
	}
	file, err := s.repo.SetPublic(ctx, id, owner, public)
	if err != nil {
		return nil, notFoundOr(err, "failed to update file")
	}
	return newFileInfo(file), nil
}

// Content opens a file's content, or its size variant when size is set.
// Private files of other users are reported as not found.
func (s *FileService) Content(ctx context.Context, requester database.UserID, rawID, size string) (*Content, error) {
	id, ok := database.ParseFileID(rawID)
	if !ok {
		return nil, ErrNotFound
	}
	file, err := s.repo.GetFile(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "failed to get file")
	}

	if !file.IsPublic && (requester == Anonymous || requester != file.OwnerID) {
		return nil, ErrNotFound
	}
	if !file.Type.HasContent() {
		return nil, ErrFolderContent
	}

	body, err := s.store.Open(file.LocalPath, size)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open content: %w", err)
	}

	return &Content{
		Body:        body,
		ContentType: contentType(file.Name),
		Name:        file.Name,
	}, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, database.ErrFileNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// parsePage reads the leading decimal digits of s as a page number, so
// "2abc" is page 2. Input without leading digits, including negative
// numbers, reads as 0. Values too large for an int saturate.
func parsePage(s string) int {
	s = strings.TrimLeft(s, " \t")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return math.MaxInt
	}
	return n
}

func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return defaultContentType
}
