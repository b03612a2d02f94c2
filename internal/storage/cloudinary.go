package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps notification attachments in Cloudinary, addressed
// by folder plus the slugged file name.
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
}

func NewCloudinaryStore(url string) (*CloudinaryStore, error) {
	client, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary store: %w", err)
	}
	client.Config.URL.Secure = true

	return &CloudinaryStore{client: client}, nil
}

func (s *CloudinaryStore) UploadFile(ctx context.Context, file []byte, filename string, folder string) (string, error) {
	result, err := s.client.Upload.Upload(ctx, bytes.NewReader(file), uploader.UploadParams{
		Folder:         folder,
		PublicID:       strings.TrimSuffix(filename, filepath.Ext(filename)),
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}

	return result.SecureURL, nil
}

func (s *CloudinaryStore) DeleteFile(ctx context.Context, publicID string, folder string) error {
	if folder != "" {
		publicID = fmt.Sprintf("%s/%s", folder, publicID)
	}

	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	return nil
}
