package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Revolution-Populi/revpop-samples/client/config"
	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
)

const blobExt = ".blob"

// FileStore keeps one file per blob in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store over it
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Backend() string { return config.BackendFile }

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+blobExt)
}

func (f *FileStore) Put(_ context.Context, data []byte) (string, error) {
	id, err := blobID(data)
	if err != nil {
		return "", err
	}

	// Write then rename so readers never see a partial blob
	tmp, err := os.CreateTemp(f.dir, id+".*.tmp")
	if err != nil {
		return "", clienterrors.NewStorageError(f.Backend(), "put", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", clienterrors.NewStorageError(f.Backend(), "put", err)
	}
	if err := tmp.Close(); err != nil {
		return "", clienterrors.NewStorageError(f.Backend(), "put", err)
	}
	if err := os.Rename(tmp.Name(), f.path(id)); err != nil {
		return "", clienterrors.NewStorageError(f.Backend(), "put", err)
	}
	return id, nil
}

func (f *FileStore) Get(_ context.Context, id string) ([]byte, error) {
	if err := checkID(f.Backend(), id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(f.Backend(), id)
	}
	if err != nil {
		return nil, clienterrors.NewStorageError(f.Backend(), "get", err)
	}

	if err := checkBlob(f.Backend(), id, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	if err := checkID(f.Backend(), id); err != nil {
		return err
	}

	err := os.Remove(f.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(f.Backend(), id)
	}
	if err != nil {
		return clienterrors.NewStorageError(f.Backend(), "delete", err)
	}
	return nil
}

func (f *FileStore) URL(id string) string {
	return "file://" + filepath.ToSlash(f.path(id))
}

func (f *FileStore) Close(context.Context) error { return nil }
