package worker

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/mansoorceksport/filevault/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFiles struct {
	nodes map[string]*domain.FileNode
}

func (f *fakeFiles) Create(ctx context.Context, node *domain.FileNode) error { return nil }

func (f *fakeFiles) GetByID(ctx context.Context, id string) (*domain.FileNode, error) {
	node, ok := f.nodes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return node, nil
}

func (f *fakeFiles) GetByIDAndUser(ctx context.Context, id, userID string) (*domain.FileNode, error) {
	node, ok := f.nodes[id]
	if !ok || node.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return node, nil
}

func (f *fakeFiles) ListByParent(ctx context.Context, userID, parentID string, page, pageSize int) ([]*domain.FileNode, error) {
	return nil, nil
}

func (f *fakeFiles) SetPublic(ctx context.Context, id string, public bool) (*domain.FileNode, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeFiles) Count(ctx context.Context) (int64, error) { return 0, nil }

type fakeUsers struct {
	users map[string]*domain.User
}

func (f *fakeUsers) Create(ctx context.Context, user *domain.User) error { return nil }

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) Count(ctx context.Context) (int64, error) { return 0, nil }

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func setupThumbnail(t *testing.T) (*ThumbnailProcessor, *domain.FileNode, domain.ContentStore) {
	t.Helper()
	store, err := repository.NewDiskContentStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path := store.NewPath()
	require.NoError(t, store.Write(ctx, path, testPNG(t, 800, 400)))

	node := &domain.FileNode{
		ID:        "img1",
		UserID:    "u1",
		Name:      "photo.png",
		Kind:      domain.KindImage,
		LocalPath: path,
	}
	files := &fakeFiles{nodes: map[string]*domain.FileNode{node.ID: node}}
	return NewThumbnailProcessor(files, store), node, store
}

func TestThumbnailGeneratesAllWidths(t *testing.T) {
	proc, node, store := setupThumbnail(t)
	ctx := context.Background()

	job := domain.Job{ID: "j1", Payload: domain.JobPayload{FileID: node.ID, UserID: node.UserID}}
	require.NoError(t, proc.Process(ctx, job))

	for _, width := range domain.ThumbnailWidths {
		data, err := store.Read(ctx, domain.VariantPath(node.LocalPath, width))
		require.NoError(t, err, "variant %d missing", width)

		img, _, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, width, img.Bounds().Dx())
		// Aspect ratio preserved: the 800x400 source halves the width.
		assert.Equal(t, width/2, img.Bounds().Dy())
	}
}

func TestThumbnailIdempotent(t *testing.T) {
	proc, node, store := setupThumbnail(t)
	ctx := context.Background()

	job := domain.Job{ID: "j1", Payload: domain.JobPayload{FileID: node.ID, UserID: node.UserID}}
	require.NoError(t, proc.Process(ctx, job))
	require.NoError(t, proc.Process(ctx, job))

	for _, width := range domain.ThumbnailWidths {
		data, err := store.Read(ctx, domain.VariantPath(node.LocalPath, width))
		require.NoError(t, err)
		_, _, err = image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
	}
}

func TestThumbnailPermanentFailures(t *testing.T) {
	proc, node, _ := setupThumbnail(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload domain.JobPayload
	}{
		{"missing fileId", domain.JobPayload{UserID: "u1"}},
		{"missing userId", domain.JobPayload{FileID: node.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := proc.Process(ctx, domain.Job{Payload: tt.payload})
			require.Error(t, err)
			assert.True(t, IsPermanent(err))
		})
	}
}

func TestThumbnailRejectsNonImage(t *testing.T) {
	store, err := repository.NewDiskContentStore(t.TempDir())
	require.NoError(t, err)

	node := &domain.FileNode{ID: "f1", UserID: "u1", Kind: domain.KindFile, LocalPath: store.NewPath()}
	files := &fakeFiles{nodes: map[string]*domain.FileNode{node.ID: node}}
	proc := NewThumbnailProcessor(files, store)

	err = proc.Process(context.Background(), domain.Job{Payload: domain.JobPayload{FileID: "f1", UserID: "u1"}})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestThumbnailUndecodableBytes(t *testing.T) {
	store, err := repository.NewDiskContentStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path := store.NewPath()
	require.NoError(t, store.Write(ctx, path, []byte("this is not an image")))

	node := &domain.FileNode{ID: "img1", UserID: "u1", Kind: domain.KindImage, LocalPath: path}
	files := &fakeFiles{nodes: map[string]*domain.FileNode{node.ID: node}}
	proc := NewThumbnailProcessor(files, store)

	err = proc.Process(ctx, domain.Job{Payload: domain.JobPayload{FileID: "img1", UserID: "u1"}})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestThumbnailMissingFileRetries(t *testing.T) {
	proc, _, _ := setupThumbnail(t)

	err := proc.Process(context.Background(), domain.Job{Payload: domain.JobPayload{FileID: "ghost", UserID: "u1"}})
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}

func TestWelcomeProcessor(t *testing.T) {
	users := &fakeUsers{users: map[string]*domain.User{
		"u1": {ID: "u1", Email: "bob@dylan.com"},
	}}
	proc := NewWelcomeProcessor(users)
	ctx := context.Background()

	require.NoError(t, proc.Process(ctx, domain.Job{Payload: domain.JobPayload{UserID: "u1"}}))

	err := proc.Process(ctx, domain.Job{Payload: domain.JobPayload{}})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))

	err = proc.Process(ctx, domain.Job{Payload: domain.JobPayload{UserID: "ghost"}})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

type countingHandler struct {
	calls atomic.Int32
	err   error
}

func (h *countingHandler) Process(ctx context.Context, job domain.Job) error {
	h.calls.Add(1)
	return h.err
}

func TestPoolProcessesJob(t *testing.T) {
	queue := repository.NewMemoryQueue(3)
	handler := &countingHandler{}
	pool := NewPool("fileQueue", queue, handler, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	require.NoError(t, queue.Enqueue(ctx, domain.JobPayload{FileID: "f1", UserID: "u1"}))

	require.Eventually(t, func() bool {
		return handler.calls.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, queue.Len())
}

func TestPoolExhaustsRetryBudget(t *testing.T) {
	queue := repository.NewMemoryQueue(3)
	handler := &countingHandler{err: assert.AnError}
	pool := NewPool("fileQueue", queue, handler, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pool.Run(ctx)

	require.NoError(t, queue.Enqueue(ctx, domain.JobPayload{FileID: "f1", UserID: "u1"}))

	require.Eventually(t, func() bool {
		return len(queue.DeadLetters()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(3), handler.calls.Load())
}

func TestPoolDeadLettersPermanentError(t *testing.T) {
	queue := repository.NewMemoryQueue(3)
	handler := &countingHandler{err: Permanent(assert.AnError)}
	pool := NewPool("fileQueue", queue, handler, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pool.Run(ctx)

	require.NoError(t, queue.Enqueue(ctx, domain.JobPayload{FileID: "f1", UserID: "u1"}))

	require.Eventually(t, func() bool {
		return len(queue.DeadLetters()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), handler.calls.Load())
}
