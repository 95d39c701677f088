package dummy

import (
	"context"
	"sort"
	"strings"
	"sync"

	cloudstorage "github.com/veedubyou/stem-split-be/src/shared/cloud_storage/entity"
)

var _ cloudstorage.FileStore = &FileStore{}

func NewDummyFileStore() *FileStore {
	return &FileStore{
		Unavailable: false,
		State:       make(map[string][]byte),
	}
}

type FileStore struct {
	Unavailable bool
	State       map[string][]byte
	mutex       sync.RWMutex
}

func (t *FileStore) GetFile(_ context.Context, url string) ([]byte, error) {
	if t.Unavailable {
		return nil, NetworkFailure
	}

	t.mutex.RLock()
	defer t.mutex.RUnlock()

	content, ok := t.State[url]
	if !ok {
		return nil, NotFound
	}

	return content, nil
}

func (t *FileStore) WriteFile(_ context.Context, url string, fileContent []byte) error {
	if t.Unavailable {
		return NetworkFailure
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.State[url] = append([]byte{}, fileContent...)

	return nil
}

func (t *FileStore) ListDir(_ context.Context, dirURL string) ([]string, error) {
	if t.Unavailable {
		return nil, NetworkFailure
	}

	t.mutex.RLock()
	defer t.mutex.RUnlock()

	prefix := strings.TrimSuffix(dirURL, "/") + "/"

	fileURLs := []string{}
	for url := range t.State {
		if strings.HasPrefix(url, prefix) {
			fileURLs = append(fileURLs, url)
		}
	}

	sort.Strings(fileURLs)

	return fileURLs, nil
}
