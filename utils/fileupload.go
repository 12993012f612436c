package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxFileSize is 25MB in bytes; press-ready PDFs run large
	MaxFileSize = 25 * 1024 * 1024
)

// AllowedPrintFormats are the artwork file types the shop accepts
var AllowedPrintFormats = []string{".pdf", ".png", ".jpg", ".jpeg"}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidatePrintFile validates the uploaded artwork file format and size
func ValidatePrintFile(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, allowed := range AllowedPrintFormats {
		if ext == allowed {
			return nil
		}
	}

	return &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedPrintFormats, ", ")),
	}
}

// GetArtworkPath returns the storage key for an uploaded artwork file
func GetArtworkPath(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("artwork/%s", filename)
}
