// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging stores post images: it validates uploads, corrects EXIF
// orientation, downscales wide images and cleans up unreferenced files.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/blogicum/internal/util"
)

const (
	// MaxUploadSize is the largest accepted upload in bytes.
	MaxUploadSize = 10 << 20
	// MaxWidth is the widest stored image; wider uploads are downscaled.
	MaxWidth = 1200
	// PostsDir is the uploads subdirectory holding post images.
	PostsDir = "posts"

	jpegQuality = 90
)

var (
	// ErrUnsupportedFormat is returned for anything but JPEG, PNG, GIF and WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned for uploads over MaxUploadSize.
	ErrTooLarge = errors.New("image is too large")
)

// Processor writes post images below an uploads directory.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a processor for uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// UploadDir returns the root directory served under /media/.
func (p *Processor) UploadDir() string {
	return p.uploadDir
}

// SavePostImage decodes the upload, fixes its orientation, limits its width
// and stores it under posts/ with a random name. It returns the path
// relative to the uploads directory, using forward slashes.
func (p *Processor) SavePostImage(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return "", ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	encoded, ext, err := encodeImage(img, format)
	if err != nil {
		return "", fmt.Errorf("encoding image: %w", err)
	}

	rel := path.Join(PostsDir, uuid.NewString()+ext)
	full, err := util.SafeJoin(p.uploadDir, rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}
	if err := os.WriteFile(full, encoded, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return rel, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (p *Processor) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	full, err := util.SafeJoin(p.uploadDir, rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing image: %w", err)
	}
	return nil
}

// SweepOrphans deletes files under posts/ that are not in referenced and
// were last modified before olderThan ago. It returns the number removed.
func (p *Processor) SweepOrphans(referenced []string, olderThan time.Duration) (int, error) {
	keep := make(map[string]struct{}, len(referenced))
	for _, r := range referenced {
		keep[r] = struct{}{}
	}

	dir := filepath.Join(p.uploadDir, PostsDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rel := path.Join(PostsDir, e.Name())
		if _, ok := keep[rel]; ok {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("removing %s: %w", rel, err)
		}
		removed++
	}
	return removed, nil
}

// readExifOrientation returns the EXIF orientation tag, or 1 when absent.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation undoes the camera rotation recorded in EXIF
// orientation values 2 to 8.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes img and returns the file extension to use. WebP has
// no pure Go encoder and is stored as JPEG.
func encodeImage(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	var ext string
	var err error

	switch format {
	case "png":
		ext, err = ".png", png.Encode(&buf, img)
	case "gif":
		ext, err = ".gif", gif.Encode(&buf, img, nil)
	default:
		ext, err = ".jpg", jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), ext, nil
}

// detectFormat sniffs the image format. TIFF is rejected outright
// (CVE-2023-36308 in disintegration/imaging).
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "tiff"):
		return ""
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
