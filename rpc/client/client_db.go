package client

import (
	"sync/atomic"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/rpc/common"
	"github.com/gkvlabs/gKV/rpc/serializer"
	"github.com/gkvlabs/gKV/rpc/transport"
)

// NewRPCDatabase creates a new RPC database client
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a db.IDatabase and an error
//
// Note that Close only tears down the client's own transport: the remote
// shard is shared between clients and stays open. Corruption reported by the
// shard however is permanent and affects every client.
func NewRPCDatabase(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (db.IDatabase, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC database client
	c := rpcDatabase{
		rpcClientAdapter: rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC database client
	return &c, nil
}

type rpcDatabase struct {
	rpcClientAdapter
	closed atomic.Bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the db package in interface.go)
// --------------------------------------------------------------------------

func (c *rpcDatabase) Has(key []byte) (bool, error) {
	if c.closed.Load() {
		return false, db.ErrClosed
	}
	req := common.NewHasRequest(key)
	resp, err := invokeRPCRequest(c.shardId, req, c.transport, c.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (c *rpcDatabase) Get(key []byte) ([]byte, error) {
	if c.closed.Load() {
		return nil, db.ErrClosed
	}
	req := common.NewGetRequest(key)
	resp, err := invokeRPCRequest(c.shardId, req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

func (c *rpcDatabase) Put(key []byte, value []byte) error {
	if c.closed.Load() {
		return db.ErrClosed
	}
	req := common.NewPutRequest(key, value)
	_, err := invokeRPCRequest(c.shardId, req, c.transport, c.serializer)
	return err
}

func (c *rpcDatabase) Delete(key []byte) error {
	if c.closed.Load() {
		return db.ErrClosed
	}
	req := common.NewDeleteRequest(key)
	_, err := invokeRPCRequest(c.shardId, req, c.transport, c.serializer)
	return err
}

func (c *rpcDatabase) HealthCheck() ([]byte, error) {
	if c.closed.Load() {
		return nil, db.ErrClosed
	}
	req := common.NewHealthRequest()
	resp, err := invokeRPCRequest(c.shardId, req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// Close closes the client side only: the transport is torn down, the remote
// shard keeps serving other clients.
func (c *rpcDatabase) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return db.ErrClosed
	}
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Iterators
// --------------------------------------------------------------------------

func (c *rpcDatabase) NewIterator() (db.IIterator, error) {
	return c.NewIteratorWithStartAndPrefix(nil, nil)
}

func (c *rpcDatabase) NewIteratorWithStart(start []byte) (db.IIterator, error) {
	return c.NewIteratorWithStartAndPrefix(start, nil)
}

func (c *rpcDatabase) NewIteratorWithPrefix(prefix []byte) (db.IIterator, error) {
	return c.NewIteratorWithStartAndPrefix(nil, prefix)
}

func (c *rpcDatabase) NewIteratorWithStartAndPrefix(start, prefix []byte) (db.IIterator, error) {
	if c.closed.Load() {
		return nil, db.ErrClosed
	}
	req := common.NewIterNewRequest(start, prefix)
	resp, err := invokeRPCRequest(c.shardId, req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	return &remoteIterator{client: c, id: resp.ID}, nil
}
