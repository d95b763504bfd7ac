package candidate

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PhotoURLPrefix is where the server mounts the uploads directory.
const PhotoURLPrefix = "/uploads/"

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PhotoStore keeps candidate photos on local disk under a single directory.
type PhotoStore struct {
	dir     string
	maxSize int64
}

func NewPhotoStore(dir string, maxSize int64) *PhotoStore {
	return &PhotoStore{dir: dir, maxSize: maxSize}
}

func (s *PhotoStore) MaxSize() int64 {
	return s.maxSize
}

// Save sniffs the image type, writes the file under a random name and returns
// the public path, e.g. /uploads/3f1c...png.
func (s *PhotoStore) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrPhotoTooLarge
	}

	ext, ok := photoExtensions[http.DetectContentType(data)]
	if !ok {
		return "", ErrUnsupportedPhoto
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return PhotoURLPrefix + name, nil
}

// Remove deletes a previously saved photo; unknown paths are ignored.
func (s *PhotoStore) Remove(publicPath string) error {
	name := strings.TrimPrefix(publicPath, PhotoURLPrefix)
	if name == "" || name == publicPath || strings.ContainsAny(name, `/\`) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
