package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultPageSize is the number of nodes returned per listing page.
const DefaultPageSize = 20

// CreateFileRequest carries the client payload for node creation. Data is
// the base64-encoded content, empty for folders.
type CreateFileRequest struct {
	Name     string
	Kind     string
	ParentID string
	IsPublic bool
	Data     string
}

// FileService owns file metadata and content. The thumbnail pipeline is
// reached only through the file queue; upload success and thumbnail
// generation are decoupled guarantees.
type FileService struct {
	fileRepo  domain.FileRepository
	content   domain.ContentStore
	fileQueue domain.Queue
}

// NewFileService creates a new file service
func NewFileService(fileRepo domain.FileRepository, content domain.ContentStore, fileQueue domain.Queue) *FileService {
	return &FileService{
		fileRepo:  fileRepo,
		content:   content,
		fileQueue: fileQueue,
	}
}

// Create validates, stores content for non-folder nodes, persists the node,
// and enqueues a thumbnail job for images. An enqueue failure is reported in
// the log but does not roll back the created node; a later retry can repair
// the missing variants.
func (s *FileService) Create(ctx context.Context, userID string, req CreateFileRequest) (*domain.FileNode, error) {
	if req.Name == "" {
		return nil, domain.NewValidationError("Missing name")
	}
	if req.Kind == "" || !domain.ValidKind(req.Kind) {
		return nil, domain.NewValidationError("Missing type")
	}
	if req.Kind == domain.KindFolder && req.Data != "" {
		return nil, domain.NewValidationError("Folder cannot have data")
	}
	if req.Kind != domain.KindFolder && req.Data == "" {
		return nil, domain.NewValidationError("Missing data")
	}

	if req.ParentID != "" {
		parent, err := s.fileRepo.GetByIDAndUser(ctx, req.ParentID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidationError("Parent not found")
			}
			return nil, fmt.Errorf("failed to resolve parent: %w", err)
		}
		if !parent.IsFolder() {
			return nil, domain.NewValidationError("Parent is not a folder")
		}
	}

	node := &domain.FileNode{
		UserID:   userID,
		Name:     req.Name,
		Kind:     req.Kind,
		ParentID: req.ParentID,
		IsPublic: req.IsPublic,
	}

	if req.Kind != domain.KindFolder {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, domain.NewValidationError("Invalid data")
		}

		path := s.content.NewPath()
		if err := s.content.Write(ctx, path, data); err != nil {
			return nil, fmt.Errorf("failed to store content: %w", err)
		}
		node.LocalPath = path
	}

	if err := s.fileRepo.Create(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to persist file node: %w", err)
	}

	if node.Kind == domain.KindImage {
		payload := domain.JobPayload{FileID: node.ID, UserID: node.UserID}
		if err := s.fileQueue.Enqueue(ctx, payload); err != nil {
			log.Warn().Err(err).Str("file_id", node.ID).Msg("failed to enqueue thumbnail job")
		}
	}

	return node, nil
}

// Get resolves a node the user may read: their own nodes plus anyone's
// public nodes. A private node owned by someone else reports ErrNotFound,
// never a distinct forbidden signal that would confirm existence.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*domain.FileNode, error) {
	node, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if node.UserID != userID && !node.IsPublic {
		return nil, domain.ErrNotFound
	}
	return node, nil
}

// List returns the user's children of parentID in creation order. Pages out
// of range come back empty, never as an error.
func (s *FileService) List(ctx context.Context, userID, parentID string, page int) ([]*domain.FileNode, error) {
	if page < 0 {
		page = 0
	}
	return s.fileRepo.ListByParent(ctx, userID, parentID, page, DefaultPageSize)
}

// SetPublic flips the visibility flag. Unlike reads, this is owner-only: a
// public node still reports ErrForbidden to a non-owner.
func (s *FileService) SetPublic(ctx context.Context, userID, fileID string, public bool) (*domain.FileNode, error) {
	node, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if node.UserID != userID {
		if !node.IsPublic {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrForbidden
	}
	return s.fileRepo.SetPublic(ctx, fileID, public)
}

// ReadContent returns the stored bytes for a node readable under the same
// visibility rule as Get; userID may be empty for anonymous reads of public
// nodes. When size names a thumbnail width and the node is an image, the
// variant is served if it exists and the original otherwise, so callers are
// not failed merely because processing is still in flight.
func (s *FileService) ReadContent(ctx context.Context, userID, fileID string, size int) (*domain.FileNode, []byte, error) {
	node, err := s.Get(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	if node.IsFolder() {
		return nil, nil, domain.NewValidationError("A folder doesn't have content")
	}

	if size > 0 && node.Kind == domain.KindImage {
		data, err := s.content.Read(ctx, domain.VariantPath(node.LocalPath, size))
		if err == nil {
			return node, data, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, err
		}
		// Variant not generated yet; fall through to the original.
	}

	data, err := s.content.Read(ctx, node.LocalPath)
	if err != nil {
		return nil, nil, err
	}
	return node, data, nil
}
