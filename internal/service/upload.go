package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/storage"
)

// UploadPolicy bounds user uploads.
type UploadPolicy struct {
	MaxBytes     int64
	AllowedMIMEs []string
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// storeImage sniffs the content type, enforces the policy and writes the file
// under prefix/<owner>/<uuid><ext>.
func storeImage(ctx context.Context, store storage.ObjectStore, policy UploadPolicy, prefix, ownerID string, upload Upload) (*dto.ProofUploadResponse, error) {
	if store == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "object storage is not configured")
	}
	if upload.Body == nil || upload.Size == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if policy.MaxBytes > 0 && upload.Size > policy.MaxBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", policy.MaxBytes))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !mimeAllowed(policy.AllowedMIMEs, contentType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("content type %s is not allowed", contentType))
	}

	ext, ok := mimeExtensions[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(upload.Filename))
	}
	key := fmt.Sprintf("%s/%s/%s%s", prefix, ownerID, uuid.NewString(), ext)

	url, err := store.Put(ctx, storage.Object{
		Key:         key,
		Body:        io.MultiReader(bytes.NewReader(head), upload.Body),
		Size:        upload.Size,
		ContentType: contentType,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	return &dto.ProofUploadResponse{URL: url, Key: key, Size: upload.Size, ContentType: contentType}, nil
}

func mimeAllowed(allowed []string, contentType string) bool {
	if len(allowed) == 0 {
		_, ok := mimeExtensions[contentType]
		return ok
	}
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, contentType) {
			return true
		}
	}
	return false
}
