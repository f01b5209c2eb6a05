package client

import (
	"github.com/gkvlabs/gKV/rpc/common"
)

// remoteIterator drives a server-side iterator handle over RPC. Each call to
// Next fetches exactly one entry; the entry is cached locally so Key and
// Value are plain field reads.
type remoteIterator struct {
	client *rpcDatabase
	id     uint64

	key       []byte
	value     []byte
	err       error
	exhausted bool
	released  bool
}

func (it *remoteIterator) Next() bool {
	if it.exhausted || it.released || it.err != nil {
		return false
	}

	req := common.NewIterNextRequest(it.id)
	resp, err := invokeRPCRequest(it.client.shardId, req, it.client.transport, it.client.serializer)
	if err != nil {
		it.err = err
		it.key, it.value = nil, nil
		return false
	}

	if !resp.Ok {
		// Iteration finished normally
		it.exhausted = true
		it.key, it.value = nil, nil
		return false
	}

	it.key, it.value = resp.Key, resp.Value
	return true
}

func (it *remoteIterator) Error() error {
	if it.err != nil {
		return it.err
	}
	if it.released {
		return nil
	}

	req := common.NewIterErrRequest(it.id)
	if _, err := invokeRPCRequest(it.client.shardId, req, it.client.transport, it.client.serializer); err != nil {
		return err
	}
	return nil
}

func (it *remoteIterator) Key() []byte {
	return it.key
}

func (it *remoteIterator) Value() []byte {
	return it.value
}

// Release frees the server-side iterator. The release is best-effort: if the
// transport fails the server keeps the handle until the connection drops.
func (it *remoteIterator) Release() {
	if it.released {
		return
	}
	it.released = true
	it.key, it.value = nil, nil

	req := common.NewIterReleaseRequest(it.id)
	if _, err := invokeRPCRequest(it.client.shardId, req, it.client.transport, it.client.serializer); err != nil {
		Logger.Warningf("failed to release remote iterator %d: %v", it.id, err)
	}
}
