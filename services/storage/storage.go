package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// StoredFile describes an uploaded asset.
type StoredFile struct {
	PublicID string
	URL      string
}

// StorageService stores uploaded files outside the database.
type StorageService interface {
	// Upload stores file in folder under publicID.
	Upload(ctx context.Context, file io.Reader, folder, publicID string) (*StoredFile, error)
	// Delete removes a stored file. Deleting a missing file succeeds.
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryStorage implements StorageService on Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cld *cloudinary.Cloudinary) *CloudinaryStorage {
	return &CloudinaryStorage{cld: cld}
}

func (s *CloudinaryStorage) Upload(ctx context.Context, file io.Reader, folder, publicID string) (*StoredFile, error) {
	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto",
	}
	result, err := s.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload file: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("upload returned no public ID")
	}
	return &StoredFile{PublicID: result.PublicID, URL: result.SecureURL}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to delete file: %s", result.Error.Message)
	}
	return nil
}
