package storage

import "context"

// FileStore persists uploaded notification attachments and returns a public
// URL for them.
type FileStore interface {
	UploadFile(ctx context.Context, file []byte, filename string, folder string) (string, error)
	DeleteFile(ctx context.Context, publicID string, folder string) error
}
