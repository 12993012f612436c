package services

import (
	"fmt"
	"mime/multipart"

	"github.com/printvala/printvala-api/models"
	"github.com/printvala/printvala-api/utils"
)

// ArtworkService handles customer artwork operations: validated upload,
// presigned retrieval and deletion.
type ArtworkService interface {
	// UploadArtwork validates and uploads a print file, returning its file reference
	UploadArtwork(fileHeader *multipart.FileHeader) (*models.FileRef, error)

	// GetArtworkURL generates a URL for accessing an uploaded file
	GetArtworkURL(storageKey string) (string, error)

	// DeleteArtwork removes a file from storage
	DeleteArtwork(storageKey string) error
}

// S3ArtworkService implements ArtworkService using AWS S3 for storage
type S3ArtworkService struct {
	s3Service S3Interface
}

var artworkServiceInstance ArtworkService

// InitArtworkService initializes the artwork service with S3 backend
func InitArtworkService(s3Service S3Interface) ArtworkService {
	artworkServiceInstance = &S3ArtworkService{
		s3Service: s3Service,
	}
	return artworkServiceInstance
}

// GetArtworkService returns the initialized artwork service instance
func GetArtworkService() ArtworkService {
	return artworkServiceInstance
}

// SetArtworkService sets the artwork service instance (primarily for testing)
func SetArtworkService(service ArtworkService) {
	artworkServiceInstance = service
}

// UploadArtwork validates and uploads a print file to S3
func (s *S3ArtworkService) UploadArtwork(fileHeader *multipart.FileHeader) (*models.FileRef, error) {
	if err := utils.ValidatePrintFile(fileHeader); err != nil {
		return nil, err
	}

	s3Key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload artwork: %w", err)
	}

	return &models.FileRef{
		OriginalFile: s3Key,
		FileName:     fileHeader.Filename,
		FileSize:     fileHeader.Size,
	}, nil
}

// GetArtworkURL generates a presigned URL for accessing an artwork file
func (s *S3ArtworkService) GetArtworkURL(storageKey string) (string, error) {
	if storageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(storageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate artwork URL: %w", err)
	}

	return url, nil
}

// DeleteArtwork deletes an artwork file from S3
func (s *S3ArtworkService) DeleteArtwork(storageKey string) error {
	if storageKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(storageKey); err != nil {
		return fmt.Errorf("failed to delete artwork: %w", err)
	}

	return nil
}
