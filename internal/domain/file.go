package domain

import (
	"context"
	"fmt"
	"time"
)

// File node kinds
const (
	KindFolder = "folder"
	KindFile   = "file"
	KindImage  = "image"
)

// RootParentID marks a node living at the top of a user's tree.
const RootParentID = ""

// ThumbnailWidths are the variant widths generated for every image node.
var ThumbnailWidths = []int{500, 250, 100}

// FileNode is a folder, file or image record owned by a user. LocalPath is
// set exactly once at creation and only for non-folder nodes; folders never
// touch the content store.
type FileNode struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	Name      string    `bson:"name" json:"name"`
	Kind      string    `bson:"kind" json:"type"`
	ParentID  string    `bson:"parent_id" json:"parentId"`
	IsPublic  bool      `bson:"is_public" json:"isPublic"`
	LocalPath string    `bson:"local_path,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsFolder reports whether the node is a folder.
func (f *FileNode) IsFolder() bool {
	return f.Kind == KindFolder
}

// ValidKind reports whether k is one of the supported node kinds.
func ValidKind(k string) bool {
	return k == KindFolder || k == KindFile || k == KindImage
}

// VariantPath derives the content path of a thumbnail variant from the
// original path. Regeneration overwrites the same path.
func VariantPath(localPath string, width int) string {
	return fmt.Sprintf("%s_%d", localPath, width)
}

// FileRepository defines operations for managing file metadata
type FileRepository interface {
	Create(ctx context.Context, node *FileNode) error
	GetByID(ctx context.Context, id string) (*FileNode, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*FileNode, error)
	// ListByParent returns the user's children of parentID in creation order,
	// sliced to the requested page.
	ListByParent(ctx context.Context, userID, parentID string, page, pageSize int) ([]*FileNode, error)
	SetPublic(ctx context.Context, id string, public bool) (*FileNode, error)
	Count(ctx context.Context) (int64, error)
}

// ContentStore maps a node's local path to its stored bytes. Writes are
// atomic so readers never observe a partially written object.
type ContentStore interface {
	// NewPath returns a fresh unique content path for a node being created.
	NewPath() string
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
}
