package storage

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/Revolution-Populi/revpop-samples/client/config"
	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
)

var blobPrefix = []byte("blob:")

// BadgerStore keeps blobs in a BadgerDB key-value store
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// NewBadgerStore opens a badger database in dir
func NewBadgerStore(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// NewBadgerStoreFromDB wraps an open database. Close leaves db open.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (b *BadgerStore) Backend() string { return config.BackendBadger }

func blobKey(id string) []byte {
	return append(append([]byte{}, blobPrefix...), id...)
}

func (b *BadgerStore) Put(_ context.Context, data []byte) (string, error) {
	id, err := blobID(data)
	if err != nil {
		return "", err
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(blobKey(id), data)
	})
	if err != nil {
		return "", clienterrors.NewStorageError(b.Backend(), "put", err)
	}
	return id, nil
}

func (b *BadgerStore) Get(_ context.Context, id string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound(b.Backend(), id)
	}
	if err != nil {
		return nil, clienterrors.NewStorageError(b.Backend(), "get", err)
	}

	if err := checkBlob(b.Backend(), id, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (b *BadgerStore) Delete(_ context.Context, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(blobKey(id)); err != nil {
			return err
		}
		return txn.Delete(blobKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound(b.Backend(), id)
	}
	if err != nil {
		return clienterrors.NewStorageError(b.Backend(), "delete", err)
	}
	return nil
}

// IDs lists the stored blob ids
func (b *BadgerStore) IDs() ([]string, error) {
	var ids []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = blobPrefix

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(blobPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, clienterrors.NewStorageError(b.Backend(), "list", err)
	}
	return ids, nil
}

func (b *BadgerStore) URL(id string) string { return "badger://" + id }

func (b *BadgerStore) Close(context.Context) error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}
