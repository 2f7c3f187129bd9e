// Package ipfs provides a high-level interface for interacting with an IPFS node.
package ipfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ipfs/boxo/files"
	"github.com/ipfs/boxo/path"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"github.com/ipfs/kubo/core/coreiface/options"
)

// NodeStatus contains information about an IPFS node's status and connectivity.
type NodeStatus struct {
	// PeerID is the unique identifier of the IPFS node
	PeerID string
	// PeerType describes the type of IPFS node (e.g., "kubo")
	PeerType string
	// ConnectedPeers is the number of peers currently connected to this node
	ConnectedPeers int
}

// Client stores and retrieves raw blobs on an IPFS node.
type Client interface {
	// Add stores raw bytes as a CIDv1 raw-leaf file and returns its CID.
	Add(ctx context.Context, data []byte) (string, error)

	// Get retrieves the content of a file by CID.
	Get(ctx context.Context, id string) ([]byte, error)

	// Exists checks the local blockstore for the CID.
	Exists(ctx context.Context, id string) (bool, error)

	// Pin keeps the CID from garbage collection under a descriptive name.
	Pin(ctx context.Context, id, name string) error

	// IsPinned reports whether the CID is pinned on the node.
	IsPinned(ctx context.Context, id string) (bool, error)

	// Unpin releases the CID for garbage collection.
	Unpin(ctx context.Context, id string) error

	// NodeStatus returns the node identity and connected peer count.
	NodeStatus(ctx context.Context) (*NodeStatus, error)
}

// ipfsClient implements Client using the Kubo RPC API.
type ipfsClient struct {
	api *rpc.HttpApi
}

// NewClient connects to the Kubo RPC API at apiURL, e.g. http://127.0.0.1:5001.
func NewClient(apiURL string) (Client, error) {
	api, err := rpc.NewURLApiWithClient(apiURL, &http.Client{})
	if err != nil {
		return nil, err
	}
	return &ipfsClient{api: api}, nil
}

// NewLocalClient connects to the node whose API address is found in the
// local IPFS repo.
func NewLocalClient() (Client, error) {
	api, err := rpc.NewLocalApi()
	if err != nil {
		return nil, err
	}
	return &ipfsClient{api: api}, nil
}

func toPath(id string) (path.Path, error) {
	c, err := cid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid CID %q: %w", id, err)
	}
	return path.FromCid(c), nil
}

func (c *ipfsClient) Add(ctx context.Context, data []byte) (string, error) {
	file := files.NewBytesFile(data)
	p, err := c.api.Unixfs().Add(ctx, file,
		options.Unixfs.CidVersion(1),
		options.Unixfs.RawLeaves(true),
	)
	if err != nil {
		return "", err
	}
	return p.RootCid().String(), nil
}

func (c *ipfsClient) Get(ctx context.Context, id string) ([]byte, error) {
	p, err := toPath(id)
	if err != nil {
		return nil, err
	}
	node, err := c.api.Unixfs().Get(ctx, p)
	if err != nil {
		return nil, err
	}
	defer node.Close()

	file, ok := node.(files.File)
	if !ok {
		return nil, fmt.Errorf("unexpected node type: %T", node)
	}

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *ipfsClient) Exists(ctx context.Context, id string) (bool, error) {
	p, err := toPath(id)
	if err != nil {
		return false, err
	}
	if _, err := c.api.Block().Stat(ctx, p); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *ipfsClient) Pin(ctx context.Context, id, name string) error {
	p, err := toPath(id)
	if err != nil {
		return err
	}
	return c.api.Pin().Add(ctx, p, options.Pin.Name(name))
}

func (c *ipfsClient) IsPinned(ctx context.Context, id string) (bool, error) {
	p, err := toPath(id)
	if err != nil {
		return false, err
	}
	_, pinned, err := c.api.Pin().IsPinned(ctx, p)
	if err != nil {
		return false, err
	}
	return pinned, nil
}

func (c *ipfsClient) Unpin(ctx context.Context, id string) error {
	p, err := toPath(id)
	if err != nil {
		return err
	}
	return c.api.Pin().Rm(ctx, p)
}

func (c *ipfsClient) NodeStatus(ctx context.Context) (*NodeStatus, error) {
	nodeKey, err := c.api.Key().Self(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get node ID: %w", err)
	}

	swarmPeers, err := c.api.Swarm().Peers(ctx)
	connectedPeers := 0
	if err == nil {
		connectedPeers = len(swarmPeers)
	}

	return &NodeStatus{
		PeerID:         nodeKey.ID().String(),
		PeerType:       "kubo",
		ConnectedPeers: connectedPeers,
	}, nil
}
