package storage

import (
	"context"

	"github.com/Revolution-Populi/revpop-samples/client/config"
	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
	"github.com/Revolution-Populi/revpop-samples/types/ipfs"
)

const pinName = "revpop"

// IPFSStore adds and pins blobs on an IPFS node. Delete unpins; the node
// drops the blob at its next garbage collection.
type IPFSStore struct {
	client ipfs.Client
}

// NewIPFSStore connects to the kubo RPC API at apiURL. config.IPFSLocalAPI
// uses the API address of the local repo.
func NewIPFSStore(apiURL string) (*IPFSStore, error) {
	var (
		client ipfs.Client
		err    error
	)
	if apiURL == config.IPFSLocalAPI {
		client, err = ipfs.NewLocalClient()
	} else {
		client, err = ipfs.NewClient(apiURL)
	}
	if err != nil {
		return nil, err
	}
	return NewIPFSStoreWithClient(client), nil
}

// NewIPFSStoreWithClient wraps an existing client
func NewIPFSStoreWithClient(client ipfs.Client) *IPFSStore {
	return &IPFSStore{client: client}
}

func (s *IPFSStore) Backend() string { return config.BackendIPFS }

func (s *IPFSStore) Put(ctx context.Context, data []byte) (string, error) {
	id, err := s.client.Add(ctx, data)
	if err != nil {
		return "", clienterrors.NewStorageError(s.Backend(), "add", err)
	}
	if err := s.client.Pin(ctx, id, pinName); err != nil {
		return "", clienterrors.NewStorageError(s.Backend(), "pin", err)
	}
	return id, nil
}

func (s *IPFSStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := checkID(s.Backend(), id); err != nil {
		return nil, err
	}

	exists, err := s.client.Exists(ctx, id)
	if err != nil {
		return nil, clienterrors.NewStorageError(s.Backend(), "stat", err)
	}
	if !exists {
		return nil, notFound(s.Backend(), id)
	}

	data, err := s.client.Get(ctx, id)
	if err != nil {
		return nil, clienterrors.NewStorageError(s.Backend(), "get", err)
	}
	return data, nil
}

func (s *IPFSStore) Delete(ctx context.Context, id string) error {
	if err := checkID(s.Backend(), id); err != nil {
		return err
	}

	pinned, err := s.client.IsPinned(ctx, id)
	if err != nil {
		return clienterrors.NewStorageError(s.Backend(), "pin lookup", err)
	}
	if !pinned {
		return notFound(s.Backend(), id)
	}

	if err := s.client.Unpin(ctx, id); err != nil {
		return clienterrors.NewStorageError(s.Backend(), "unpin", err)
	}
	return nil
}

func (s *IPFSStore) URL(id string) string { return "ipfs://" + id }

// Status reports the node identity
func (s *IPFSStore) Status(ctx context.Context) (*ipfs.NodeStatus, error) {
	return s.client.NodeStatus(ctx)
}

func (s *IPFSStore) Close(context.Context) error { return nil }
