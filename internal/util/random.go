package util

import (
	"fmt"

	"github.com/gosimple/slug"
	"github.com/lithammer/shortuuid/v4"
)

// NewNotificationID returns a new opaque notification id. Short ids keep the
// task ids and log lines readable while staying collision-safe.
func NewNotificationID() string {
	return fmt.Sprintf("ntf_%s", shortuuid.New())
}

// GenerateAttachmentSlug builds a storage-safe public id for an uploaded
// attachment, keeping the original name recognizable.
func GenerateAttachmentSlug(name string) string {
	baseSlug := slug.Make(name)
	shortID := shortuuid.New()[:8]

	return fmt.Sprintf("%s-%s", baseSlug, shortID)
}
