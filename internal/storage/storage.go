package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the binary-file collaborator: put, get and best-effort delete.
type Store interface {
	Save(name string, r io.Reader) error
	Open(name string) (*os.File, error)
	Remove(name string) error
}

// Disk stores files flat under a single directory.
type Disk struct {
	dir string
}

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) Save(name string, r io.Reader) error {
	dst, err := os.Create(filepath.Join(d.dir, filepath.Base(name)))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, r)
	return err
}

func (d *Disk) Open(name string) (*os.File, error) {
	return os.Open(filepath.Join(d.dir, filepath.Base(name)))
}

func (d *Disk) Remove(name string) error {
	return os.Remove(filepath.Join(d.dir, filepath.Base(name)))
}

// ErrNotImage rejects picture uploads whose MIME type is not image/*.
var ErrNotImage = errors.New("only image uploads are allowed")

// AudioName derives the stored name for an uploaded audio file: a millisecond
// timestamp plus the original extension, so concurrent uploads cannot collide
// on the original filename.
func AudioName(originalName string, now time.Time) string {
	return fmt.Sprintf("%d%s", now.UnixMilli(), filepath.Ext(originalName))
}

// PictureName decides whether a picture upload is acceptable and, if so,
// returns its stored name. Pure: no filesystem involved.
func PictureName(originalName, mimeType string) (string, error) {
	if !strings.HasPrefix(mimeType, "image") {
		return "", ErrNotImage
	}
	return uuid.NewString() + filepath.Ext(originalName), nil
}
