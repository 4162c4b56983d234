package handler

import (
	"mime"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/mansoorceksport/filevault/internal/middleware"
	"github.com/mansoorceksport/filevault/internal/service"
)

// FileHandler handles file node endpoints
type FileHandler struct {
	fileService *service.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

type createFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

// PostUpload handles POST /files
func (h *FileHandler) PostUpload(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req createFileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing name"})
	}

	node, err := h.fileService.Create(c.Context(), userID, service.CreateFileRequest{
		Name:     req.Name,
		Kind:     req.Type,
		ParentID: req.ParentID,
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

// GetShow handles GET /files/:id
func (h *FileHandler) GetShow(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	node, err := h.fileService.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(node)
}

// GetIndex handles GET /files?parentId=&page=
func (h *FileHandler) GetIndex(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil {
		page = 0
	}

	nodes, err := h.fileService.List(c.Context(), userID, c.Query("parentId"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(nodes)
}

// PutPublish handles PUT /files/:id/publish
func (h *FileHandler) PutPublish(c *fiber.Ctx) error {
	return h.setPublic(c, true)
}

// PutUnpublish handles PUT /files/:id/unpublish
func (h *FileHandler) PutUnpublish(c *fiber.Ctx) error {
	return h.setPublic(c, false)
}

func (h *FileHandler) setPublic(c *fiber.Ctx, public bool) error {
	userID := middleware.GetUserID(c)

	node, err := h.fileService.SetPublic(c.Context(), userID, c.Params("id"), public)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(node)
}

// GetFile handles GET /files/:id/data?size=. Anonymous requests can read
// public file data; everything else follows the session rules.
func (h *FileHandler) GetFile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && validThumbnailWidth(parsed) {
			size = parsed
		}
	}

	node, data, err := h.fileService.ReadContent(c.Context(), userID, c.Params("id"), size)
	if err != nil {
		return respondError(c, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(node.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}

func validThumbnailWidth(size int) bool {
	for _, w := range domain.ThumbnailWidths {
		if w == size {
			return true
		}
	}
	return false
}
