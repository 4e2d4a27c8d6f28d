package filestorage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/pkg/logger"
)

// DefaultMaxImageSize caps club and event image uploads
const DefaultMaxImageSize = 5 << 20

const dirPerm = 0o755

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// LocalStorage keeps uploads under basePath, served by the HTTP server at baseURL
type LocalStorage struct {
	basePath string
	baseURL  string
	maxSize  int64
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage ready")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxSize:  DefaultMaxImageSize,
	}, nil
}

// cleanRel normalizes p into a slash-separated path that cannot climb out of its root
func cleanRel(p string) string {
	return strings.TrimLeft(path.Clean("/"+filepath.ToSlash(p)), "/")
}

func (ls *LocalStorage) checkImage(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", errors.New("no file uploaded")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if fh.Size > ls.maxSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, fh.Size, ls.maxSize)
	}
	return ext, nil
}

// SaveFileWithPath stores an image under subPath with a random name and
// returns the URL it is served from
func (ls *LocalStorage) SaveFileWithPath(fh *multipart.FileHeader, subPath string) (string, error) {
	ext, err := ls.checkImage(fh)
	if err != nil {
		return "", err
	}

	rel := path.Join(cleanRel(subPath), uuid.NewString()+ext)
	if err := ls.write(fh, filepath.Join(ls.basePath, filepath.FromSlash(rel))); err != nil {
		return "", err
	}

	logger.Info().Str("filename", fh.Filename).Str("stored_as", rel).Msg("Image stored")
	return ls.baseURL + "/" + rel, nil
}

func (ls *LocalStorage) write(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	_, copyErr := io.Copy(out, io.LimitReader(src, ls.maxSize+1))
	if err := errors.Join(copyErr, out.Close()); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// DeleteFile removes a stored file. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	if fileURL == "" {
		return nil
	}
	p, err := ls.resolve(fileURL)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn().Str("path", p).Msg("File to delete does not exist")
		return nil
	default:
		return fmt.Errorf("delete file: %w", err)
	}
}

// resolve maps a public URL back into basePath
func (ls *LocalStorage) resolve(fileURL string) (string, error) {
	rel := cleanRel(strings.TrimPrefix(fileURL, ls.baseURL))
	if rel == "" || rel == "." {
		return "", fmt.Errorf("invalid file path: %s", fileURL)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel)), nil
}
