package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mansoorceksport/filevault/internal/domain"
)

// In-memory fakes shared by the service tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	next  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	user.ID = fmt.Sprintf("user-%d", r.next)
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type memFileRepo struct {
	mu    sync.Mutex
	nodes []*domain.FileNode
	next  int
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{}
}

func (r *memFileRepo) Create(ctx context.Context, node *domain.FileNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	node.ID = fmt.Sprintf("file-%d", r.next)
	node.CreatedAt = time.Now()
	clone := *node
	r.nodes = append(r.nodes, &clone)
	return nil
}

func (r *memFileRepo) GetByID(ctx context.Context, id string) (*domain.FileNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.nodes {
		if n.ID == id {
			clone := *n
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memFileRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*domain.FileNode, error) {
	node, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if node.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return node, nil
}

func (r *memFileRepo) ListByParent(ctx context.Context, userID, parentID string, page, pageSize int) ([]*domain.FileNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.FileNode
	for _, n := range r.nodes {
		if n.UserID == userID && n.ParentID == parentID {
			clone := *n
			matched = append(matched, &clone)
		}
	}

	start := page * pageSize
	if start >= len(matched) {
		return []*domain.FileNode{}, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *memFileRepo) SetPublic(ctx context.Context, id string, public bool) (*domain.FileNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.nodes {
		if n.ID == id {
			n.IsPublic = public
			clone := *n
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memFileRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.nodes)), nil
}

type memContentStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	next    int
}

func newMemContentStore() *memContentStore {
	return &memContentStore{objects: make(map[string][]byte)}
}

func (s *memContentStore) NewPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("/mem/%d", s.next)
}

func (s *memContentStore) Write(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[path] = buf
	return nil
}

func (s *memContentStore) Read(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (s *memContentStore) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok, nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]string)}
}

func (r *memSessionRepo) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = userID
	return nil
}

func (r *memSessionRepo) Get(ctx context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if userID, ok := r.sessions[token]; ok {
		return userID, nil
	}
	return "", domain.ErrNotFound
}

func (r *memSessionRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}
