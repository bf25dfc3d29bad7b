package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG format support
	"net/url"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/albumplayer/internal/domain"
	"go.uber.org/zap"
)

const (
	// ModeThumb renders a square album card image
	ModeThumb = "thumb"
	// ModeBackdrop renders a blurred background with the sharp cover centered on it
	ModeBackdrop = "backdrop"
)

const (
	defaultBlurRadius = 15.0
	coverHeightRatio  = 0.60 // Centered cover size as fraction of backdrop height
	jpegQuality       = 90
)

// ErrUnknownMode is returned for render modes other than thumb and backdrop
var ErrUnknownMode = errors.New("unknown render mode")

// ProcessorConfig holds configuration for image processing
type ProcessorConfig struct {
	ThumbSize        int
	BackdropWidth    int
	BackdropHeight   int
	BlurRadius       float64
	CoverSizePercent float64
}

// DefaultProcessorConfig returns the sizes used by the HTTP and terminal surfaces
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		ThumbSize:        300,
		BackdropWidth:    1280,
		BackdropHeight:   720,
		BlurRadius:       defaultBlurRadius,
		CoverSizePercent: coverHeightRatio,
	}
}

// CoverRenderer fetches album covers and renders them as JPEGs, caching the results on disk
type CoverRenderer struct {
	logger *zap.Logger
	source domain.MetadataSource
	appCfg domain.Config
	config ProcessorConfig
}

var _ domain.CoverProcessor = (*CoverRenderer)(nil)

// NewCoverRenderer creates a new cover renderer
func NewCoverRenderer(logger *zap.Logger, source domain.MetadataSource, appCfg domain.Config) *CoverRenderer {
	return &CoverRenderer{
		logger: logger,
		source: source,
		appCfg: appCfg,
		config: DefaultProcessorConfig(),
	}
}

// Generate returns the rendered cover of folder, rendering it on a cache miss
func (p *CoverRenderer) Generate(ctx context.Context, folder, cover, mode string) ([]byte, error) {
	if mode != ModeThumb && mode != ModeBackdrop {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if cover == "" {
		cover = domain.DefaultCover
	}

	// 1. Serve from cache when present
	cachePath := p.cachePath(folder, cover, mode)
	if data, err := os.ReadFile(cachePath); err == nil {
		p.logger.Debug("Cover cache hit", zap.String("path", cachePath))
		return data, nil
	}

	// 2. Fetch the original cover
	imageData, err := p.source.Get(ctx, domain.CoverPath(folder, cover))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cover: %w", err)
	}

	// 3. Render
	result, err := p.Process(ctx, imageData, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to process cover: %w", err)
	}

	// 4. Store; a cache write failure still serves the rendered image
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		p.logger.Warn("Failed to create cache directory", zap.Error(err))
		return result, nil
	}
	if err := os.WriteFile(cachePath, result, 0644); err != nil {
		p.logger.Warn("Failed to write cover cache", zap.String("path", cachePath), zap.Error(err))
		return result, nil
	}

	p.logger.Info("Cover rendered",
		zap.String("folder", folder),
		zap.String("mode", mode),
		zap.Int("size", len(result)))
	return result, nil
}

// cachePath joins the escaped names with '#', which PathEscape always escapes
func (p *CoverRenderer) cachePath(folder, cover, mode string) string {
	name := url.PathEscape(folder) + "#" + url.PathEscape(cover) + ".jpg"
	return filepath.Join(p.appCfg.GetCacheDir(), "covers", mode, name)
}

// Process decodes imageData and renders it in mode
func (p *CoverRenderer) Process(ctx context.Context, imageData []byte, mode string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Validate image dimensions to prevent division by zero
	bounds := img.Bounds()
	if bounds.Dy() == 0 || bounds.Dx() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	var result image.Image
	switch mode {
	case ModeThumb:
		size := p.config.ThumbSize
		result = imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
	case ModeBackdrop:
		result = p.backdrop(img)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, result, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	p.logger.Debug("Image processed successfully", zap.String("mode", mode), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// backdrop fills the frame with a blurred copy and pastes the sharp cover at the center
func (p *CoverRenderer) backdrop(img image.Image) image.Image {
	w, h := p.config.BackdropWidth, p.config.BackdropHeight
	bounds := img.Bounds()

	background := imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	background = imaging.Blur(background, p.config.BlurRadius)

	coverHeight := int(float64(h) * p.config.CoverSizePercent)
	coverWidth := coverHeight * bounds.Dx() / bounds.Dy()
	if coverWidth > w {
		coverWidth = w
		coverHeight = coverWidth * bounds.Dy() / bounds.Dx()
	}
	cover := imaging.Resize(img, coverWidth, coverHeight, imaging.Lanczos)

	return imaging.Paste(background, cover, image.Pt((w-coverWidth)/2, (h-coverHeight)/2))
}
