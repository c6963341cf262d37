package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore writes uploaded files under a local root directory and
// hands back the relative URL path that gets stored in user and
// message rows. The same paths are served by the /uploads static
// mounts.
//
// TODO: enforce an image content-type allow-list when upload handling
// moves behind a storage service.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) SaveProfilePicture(file multipart.File, header *multipart.FileHeader) (string, error) {
	name := "profile_picture-" + uuid.NewString() + filepath.Ext(header.Filename)
	if err := s.write(s.root, name, file); err != nil {
		return "", err
	}
	return path.Join("/uploads", name), nil
}

func (s *FileStore) SaveMessageImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	name := "message-image-" + uuid.NewString() + filepath.Ext(header.Filename)
	if err := s.write(filepath.Join(s.root, "messages"), name, file); err != nil {
		return "", err
	}
	return path.Join("/uploads/messages", name), nil
}

func (s *FileStore) write(dir, name string, src io.Reader) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write upload file: %w", err)
	}
	return nil
}
