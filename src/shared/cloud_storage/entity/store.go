package cloudstorage

import "context"

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// FileStore is the remote home of the pretrained model weights.
// Paths are full URLs in the storage host format.
//
//counterfeiter:generate . FileStore
type FileStore interface {
	GetFile(ctx context.Context, url string) ([]byte, error)
	WriteFile(ctx context.Context, url string, fileContent []byte) error
	// ListDir returns the URLs of all objects under the given dir URL.
	ListDir(ctx context.Context, dirURL string) ([]string, error)
}
