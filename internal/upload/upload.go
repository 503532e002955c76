// Package upload stores product images and builds their public URLs.
package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"eshop-backend/internal/model"
)

// MaxGalleryImages is the most files a gallery update accepts.
const MaxGalleryImages = 10

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// Backend persists a named object.
type Backend interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) error
	// URL returns the public URL of name. base is scheme://host of the
	// request that uploaded it; backends with their own host ignore it.
	URL(base, name string) string
	// Remove deletes name. Removing a missing object is not an error.
	Remove(ctx context.Context, name string) error
}

type Uploader struct {
	backend Backend
}

func New(b Backend) *Uploader { return &Uploader{backend: b} }

// Image checks that fh holds a png or jpeg by content, stores it under a
// fresh name and returns its public URL.
func (u *Uploader) Image(ctx context.Context, fh *multipart.FileHeader, base string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !allowedTypes[mt.String()] {
		return "", model.Invalid("invalid image type %s", mt.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := FileName(fh.Filename, mt.Extension())
	if err := u.backend.Save(ctx, name, mt.String(), f); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return u.backend.URL(base, name), nil
}

// Images stores every file with Image, in order. If one file fails the
// ones already stored are removed again.
func (u *Uploader) Images(ctx context.Context, fhs []*multipart.FileHeader, base string) ([]string, error) {
	if len(fhs) > MaxGalleryImages {
		return nil, model.Invalid("at most %d images are allowed", MaxGalleryImages)
	}
	urls := make([]string, 0, len(fhs))
	for _, fh := range fhs {
		url, err := u.Image(ctx, fh, base)
		if err != nil {
			u.Discard(ctx, urls...)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Discard removes uploads whose record could not be saved. Failures are
// logged; the caller is already returning an error of its own.
func (u *Uploader) Discard(ctx context.Context, urls ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, url := range urls {
		name := path.Base(url)
		if err := u.backend.Remove(ctx, name); err != nil {
			log.Printf("discard upload %s: %v", name, err)
		}
	}
}

// FileName keeps the client's base name, with spaces replaced, and appends a
// random suffix so uploads never overwrite each other.
func FileName(original, ext string) string {
	base := filepath.Base(original)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Join(strings.Fields(base), "-")
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "image"
	}
	return fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)
}
