package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/cockroachdb/errors"
	cloudstorage "github.com/veedubyou/stem-split-be/src/shared/cloud_storage/entity"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var _ cloudstorage.FileStore = GoogleFileStore{}

const GOOGLE_STORAGE_HOST = "https://storage.googleapis.com"

type GoogleFileStore struct {
	storageClient *storage.Client
}

func NewGoogleFileStore(jsonKey string) (GoogleFileStore, error) {
	googleStorageClient, err := storage.NewClient(context.Background(), option.WithCredentialsJSON([]byte(jsonKey)))

	if err != nil {
		return GoogleFileStore{}, errors.Wrap(err, "Failed to create Google Cloud Storage client")
	}

	return GoogleFileStore{
		storageClient: googleStorageClient,
	}, nil
}

func (g GoogleFileStore) GetFile(ctx context.Context, fileURL string) ([]byte, error) {
	bucket, filePath, err := g.bucketAndPathFromURL(fileURL)
	if err != nil {
		return nil, errors.Wrap(err, "Couldn't extract file path from URL")
	}

	objectHandle := g.objectHandle(bucket, filePath)
	reader, err := objectHandle.NewReader(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create reader for Google object handle")
	}

	defer reader.Close()

	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read remote file")
	}

	return contents, nil
}

func (g GoogleFileStore) WriteFile(ctx context.Context, fileURL string, fileContent []byte) (err error) {
	bucket, filePath, err := g.bucketAndPathFromURL(fileURL)
	if err != nil {
		return errors.Wrap(err, "Couldn't extract file path from URL")
	}

	objectHandle := g.objectHandle(bucket, filePath)
	writer := objectHandle.NewWriter(ctx)
	defer func() {
		closeErr := writer.Close()
		if err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "Error occurred when closing the upload stream")
		}
	}()

	if _, err = writer.Write(fileContent); err != nil {
		return errors.Wrap(err, "Error occurred when uploading file")
	}

	return nil
}

func (g GoogleFileStore) ListDir(ctx context.Context, dirURL string) ([]string, error) {
	bucket, dirPath, err := g.bucketAndPathFromURL(dirURL)
	if err != nil {
		return nil, errors.Wrap(err, "Couldn't extract dir path from URL")
	}

	if !strings.HasSuffix(dirPath, "/") {
		dirPath += "/"
	}

	objects := g.storageClient.Bucket(bucket).Objects(ctx, &storage.Query{
		Prefix: dirPath,
	})

	fileURLs := []string{}
	for {
		objectAttrs, err := objects.Next()
		if err == iterator.Done {
			break
		}

		if err != nil {
			return nil, errors.Wrap(err, "Failed to iterate remote dir listing")
		}

		fileURLs = append(fileURLs, fmt.Sprintf("%s/%s/%s", GOOGLE_STORAGE_HOST, bucket, objectAttrs.Name))
	}

	return fileURLs, nil
}

func (g GoogleFileStore) bucketAndPathFromURL(fileURL string) (string, string, error) {
	if !strings.HasPrefix(fileURL, GOOGLE_STORAGE_HOST+"/") {
		return "", "", errors.New("File path given not in the Google cloud storage format")
	}

	bucketAndPath := strings.TrimPrefix(fileURL, GOOGLE_STORAGE_HOST+"/")

	chunks := strings.SplitN(bucketAndPath, "/", 2)
	if len(chunks) != 2 {
		return "", "", errors.New("File path given not in the Google cloud storage format")
	}

	bucket := chunks[0]
	path := chunks[1]

	return bucket, path, nil
}

func (g GoogleFileStore) objectHandle(bucket string, filePath string) *storage.ObjectHandle {
	return g.storageClient.Bucket(bucket).Object(filePath)
}
