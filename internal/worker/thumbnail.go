package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ThumbnailProcessor generates the resized variants for an image node.
// Variants are written to paths derived from the original, so re-running a
// job overwrites instead of duplicating; a partial failure leaves the
// completed widths in place for the retry to skip over cheaply.
type ThumbnailProcessor struct {
	files   domain.FileRepository
	content domain.ContentStore
}

// NewThumbnailProcessor creates a thumbnail processor
func NewThumbnailProcessor(files domain.FileRepository, content domain.ContentStore) *ThumbnailProcessor {
	return &ThumbnailProcessor{
		files:   files,
		content: content,
	}
}

func (p *ThumbnailProcessor) Process(ctx context.Context, job domain.Job) error {
	if job.Payload.FileID == "" {
		return Permanent(errors.New("missing fileId"))
	}
	if job.Payload.UserID == "" {
		return Permanent(errors.New("missing userId"))
	}

	node, err := p.files.GetByIDAndUser(ctx, job.Payload.FileID, job.Payload.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The node may not be visible yet (read-after-write timing);
			// let the retry budget decide when to give up.
			return fmt.Errorf("file not found: %s", job.Payload.FileID)
		}
		return fmt.Errorf("failed to resolve file: %w", err)
	}
	if node.Kind != domain.KindImage {
		return Permanent(fmt.Errorf("node %s is not an image", node.ID))
	}

	original, err := p.content.Read(ctx, node.LocalPath)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("content missing for %s", node.LocalPath)
		}
		return fmt.Errorf("failed to read original content: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		// Undecodable bytes never become decodable; retrying is pointless.
		return Permanent(fmt.Errorf("failed to decode image %s: %w", node.ID, err))
	}
	encFormat, err := imaging.FormatFromExtension("." + format)
	if err != nil {
		return Permanent(fmt.Errorf("unsupported image format %q: %w", format, err))
	}

	// Widths are independent: no shared context cancellation, so a failing
	// width does not abort its siblings mid-write.
	var g errgroup.Group
	for _, width := range domain.ThumbnailWidths {
		g.Go(func() error {
			if err := p.generate(ctx, node, img, encFormat, width); err != nil {
				log.Warn().Err(err).Str("file_id", node.ID).Int("width", width).Msg("thumbnail generation failed")
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("thumbnail generation incomplete: %w", err)
	}

	log.Info().Str("file_id", node.ID).Msg("thumbnails generated")
	return nil
}

func (p *ThumbnailProcessor) generate(ctx context.Context, node *domain.FileNode, img image.Image, format imaging.Format, width int) error {
	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return fmt.Errorf("failed to encode %d variant: %w", width, err)
	}

	if err := p.content.Write(ctx, domain.VariantPath(node.LocalPath, width), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %d variant: %w", width, err)
	}
	return nil
}
