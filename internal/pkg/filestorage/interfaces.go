package filestorage

import (
	"errors"
	"mime/multipart"
)

// ErrUnsupportedFileType is returned for uploads whose extension is not allowed
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrFileTooLarge is returned for uploads above the size limit
var ErrFileTooLarge = errors.New("file too large")

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores the upload under subPath and returns its public URL
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a file previously returned by SaveFileWithPath
	DeleteFile(fileURL string) error
}
