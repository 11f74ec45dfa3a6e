package filemgr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"vanita/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadSize caps menu image uploads at 5 MB.
	MaxUploadSize = 5 << 20

	UploadDir = "uploads"
	ThumbDir  = "uploads/thumbs"

	thumbWidth = 300
)

var (
	AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	AllowedMIMEs      = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

	ErrInvalidExtension = errors.New("invalid file extension")
	ErrInvalidMIME      = errors.New("invalid MIME type")
	ErrFileTooLarge     = errors.New("file size exceeds limit")
)

// SaveFormFile validates and stores the uploaded image under the given form
// key, returning URL paths for the saved image and its thumbnail. With no
// file present it returns empty paths unless required is set.
func SaveFormFile(form *multipart.Form, formKey string, required bool) (string, string, error) {
	if form == nil || len(form.File[formKey]) == 0 {
		if required {
			return "", "", fmt.Errorf("missing required file: %s", formKey)
		}
		return "", "", nil
	}

	header := form.File[formKey][0]
	file, err := header.Open()
	if err != nil {
		return "", "", fmt.Errorf("open %s: %w", formKey, err)
	}
	defer file.Close()

	return saveImage(file, header)
}

func saveImage(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !contains(AllowedExtensions, ext) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidExtension, ext)
	}
	if header.Size > MaxUploadSize {
		return "", "", ErrFileTooLarge
	}

	buf, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(buf)) > MaxUploadSize {
		return "", "", ErrFileTooLarge
	}

	// Sniff the payload rather than trusting the client header.
	mimeType := http.DetectContentType(buf)
	if !contains(AllowedMIMEs, mimeType) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidMIME, mimeType)
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return "", "", fmt.Errorf("decode image %q: %w", header.Filename, err)
	}

	// Re-encoding JPEGs drops EXIF metadata.
	if mimeType == "image/jpeg" {
		stripped := new(bytes.Buffer)
		if err := jpeg.Encode(stripped, img, &jpeg.Options{Quality: 90}); err == nil {
			buf = stripped.Bytes()
		}
	}

	if err := utils.EnsureDir(UploadDir); err != nil {
		return "", "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	fullPath := filepath.Join(UploadDir, name)
	if err := os.WriteFile(fullPath, buf, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", fullPath, err)
	}

	thumbName, err := writeThumbnail(img, name)
	if err != nil {
		// Thumbnail failure is not fatal; the original is already stored.
		return "/" + UploadDir + "/" + name, "", nil
	}

	return "/" + UploadDir + "/" + name, "/" + ThumbDir + "/" + thumbName, nil
}

func writeThumbnail(img image.Image, name string) (string, error) {
	if err := utils.EnsureDir(ThumbDir); err != nil {
		return "", err
	}

	thumbName := strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	out, err := os.Create(filepath.Join(ThumbDir, thumbName))
	if err != nil {
		return "", err
	}
	defer out.Close()

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}
	return thumbName, nil
}

// SanitizeFilename removes path traversal and shell-hostile characters.
func SanitizeFilename(name string) string {
	re := regexp.MustCompile(`[^\w.\-]`)
	clean := re.ReplaceAllString(filepath.Base(name), "_")
	if clean == "" {
		return "file"
	}
	return clean
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
