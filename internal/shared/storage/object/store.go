package object

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"workspace-backend/internal/shared/util"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that escape the store namespace.
var ErrInvalidKey = errors.New("invalid storage key")

// Object describes a saved blob.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// Store defines the contract for saving and retrieving document bytes.
type Store interface {
	Save(ctx context.Context, namespace string, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// PresignedUpload is a direct-to-storage upload grant.
type PresignedUpload struct {
	URL       string
	Key       string
	Headers   http.Header
	ExpiresIn time.Duration
}

// Presigner is implemented by stores that accept direct client uploads.
type Presigner interface {
	PresignPut(ctx context.Context, namespace, fileName, contentType string, expires time.Duration) (PresignedUpload, error)
}

// InNamespace reports whether key was issued for namespace by Save or PresignPut.
func InNamespace(key, namespace string) bool {
	return strings.HasPrefix(key, util.HashKey(namespace)+"/") && !strings.Contains(key, "..")
}

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// Sniff reads the head of r, detects its content type and returns a reader that
// replays the consumed bytes.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]
	return mimetype.Detect(head).String(), io.MultiReader(strings.NewReader(string(head)), r), nil
}
