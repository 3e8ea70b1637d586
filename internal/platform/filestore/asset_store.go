package filestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/devdeck/devdeck-api/internal/config"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
)

var (
	// ErrWriteFailed is returned when generated bytes cannot be stored.
	ErrWriteFailed = errors.New("asset write failed")

	// ErrInvalidAsset is returned for an empty or unsafe base name, or an
	// unsupported format.
	ErrInvalidAsset = errors.New("invalid asset")
)

// ImageFormats lists the artwork extensions probed by FindExisting, in
// priority order.
var ImageFormats = []string{"webp", "png", "jpeg", "jpg"}

const iconFormat = "svg"

// AssetStore manages the artwork and icon directories.
type AssetStore struct {
	imagesDir    string
	iconsDir     string
	publicPrefix string
	placeholder  string
	// reserved is the placeholder's base name; Write refuses it so generated
	// artwork can never replace or delete the fallback image.
	reserved string
	logger   *slog.Logger
}

// NewAssetStore creates the configured directories if needed and returns a
// store rooted at them.
func NewAssetStore(cfg config.AssetsConfig, logger *slog.Logger) (*AssetStore, error) {
	if strings.TrimSpace(cfg.ImagesDir) == "" || strings.TrimSpace(cfg.IconsDir) == "" {
		return nil, errors.New("filestore: images and icons directories are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	for _, dir := range []string{cfg.ImagesDir, cfg.IconsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("filestore: ensure directory %s: %w", dir, err)
		}
	}

	return &AssetStore{
		imagesDir:    cfg.ImagesDir,
		iconsDir:     cfg.IconsDir,
		publicPrefix: strings.TrimRight(cfg.PublicPrefix, "/"),
		placeholder:  cfg.Placeholder,
		reserved:     placeholderBase(cfg.Placeholder),
		logger:       logger.With(slog.String("component", "asset_store")),
	}, nil
}

// FindExisting returns the reference of the first artwork file for base,
// probing ImageFormats in order.
func (s *AssetStore) FindExisting(base string) (string, bool) {
	if validateBase(base) != nil {
		return "", false
	}
	for _, format := range ImageFormats {
		name := base + "." + format
		if isRegularFile(filepath.Join(s.imagesDir, name)) {
			return s.imageRef(name), true
		}
	}
	return "", false
}

// Write stores data as {base}.{format} and returns its reference. The file is
// written to a temporary name and renamed into place, so readers never see a
// partial image. Artwork for base in other formats is removed afterwards.
func (s *AssetStore) Write(ctx context.Context, base, format string, data []byte) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := validateBase(base); err != nil {
		return "", err
	}
	if base == s.reserved {
		return "", fmt.Errorf("%w: base name %q is reserved for the placeholder", ErrInvalidAsset, base)
	}
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if !isImageFormat(format) {
		return "", fmt.Errorf("%w: unsupported format %q", ErrInvalidAsset, format)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrInvalidAsset)
	}

	name := base + "." + format
	if err := writeAtomic(s.imagesDir, name, data); err != nil {
		log.Error("failed to write artwork",
			slog.String("file", name),
			slog.Any("error", err))
		return "", fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	for _, other := range ImageFormats {
		if other == format {
			continue
		}
		stale := filepath.Join(s.imagesDir, base+"."+other)
		if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove stale artwork",
				slog.String("file", stale),
				slog.Any("error", err))
		}
	}

	log.Debug("artwork written", slog.String("file", name), slog.Int("bytes", len(data)))
	return s.imageRef(name), nil
}

// FindIcon returns the reference of the curated icon for base.
func (s *AssetStore) FindIcon(base string) (string, bool) {
	if validateBase(base) != nil {
		return "", false
	}
	name := base + "." + iconFormat
	if isRegularFile(filepath.Join(s.iconsDir, name)) {
		return s.publicPrefix + "/" + path.Join("icons", name), true
	}
	return "", false
}

// Placeholder returns the reference used when no artwork is available.
func (s *AssetStore) Placeholder() string {
	return s.placeholder
}

func (s *AssetStore) imageRef(name string) string {
	return s.publicPrefix + "/" + path.Join("images", name)
}

func writeAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// placeholderBase returns the filename stem of the placeholder reference,
// e.g. "placeholder" for "/public/images/placeholder.png".
func placeholderBase(ref string) string {
	name := path.Base(ref)
	return strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))
}

// validateBase accepts only the [a-z0-9] names produced by
// domain.FilenameBase, which also rules out traversal.
func validateBase(base string) error {
	if base == "" {
		return fmt.Errorf("%w: empty base name", ErrInvalidAsset)
	}
	for i := 0; i < len(base); i++ {
		c := base[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return fmt.Errorf("%w: base name %q", ErrInvalidAsset, base)
		}
	}
	return nil
}

func isImageFormat(format string) bool {
	for _, f := range ImageFormats {
		if f == format {
			return true
		}
	}
	return false
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
