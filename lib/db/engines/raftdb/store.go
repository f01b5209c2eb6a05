package raftdb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/lib/db/engines/raftdb/internal"
	"github.com/lni/dragonboat/v4/logger"

	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
)

var (
	retries = 5
	log     = logger.GetLogger("raftdb")
)

// storeImpl implements db.IDatabase on top of a Dragonboat shard.
// It encapsulates a Dragonboat NodeHost which is used to communicate with the state machine.
type storeImpl struct {
	nh      *dragonboat.NodeHost
	shardID uint64
	cs      *client.Session
	timeout time.Duration
	closed  atomic.Bool
}

// New creates a distributed database instance which uses raft consensus to
// ensure strict linearizability across multiple nodes.
//
// Close only invalidates this handle; the NodeHost is shared between shards
// and owned by the caller.
func New(nh *dragonboat.NodeHost, shardID uint64, timeout time.Duration) db.IDatabase {
	cs := nh.GetNoOPSession(shardID)
	return &storeImpl{
		nh:      nh,
		shardID: shardID,
		cs:      cs,
		timeout: timeout,
	}
}

// --------------------------------------------------------------------------
// Internal write and read operations (used by interface methods)
// --------------------------------------------------------------------------

// write serializes a Command and sends it via SyncPropose.
// It returns a *db.Error if an error occurs, or nil on success.
func (s *storeImpl) write(cmd internal.Command) error {
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)

		res, err := s.nh.SyncPropose(ctx, s.cs, cmd.Serialize())
		cancel()

		// Check for system busy errors
		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncPropose: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(s.timeout / 10)
			continue
		}

		if err != nil {
			return db.NewError(db.RetCInternalError, err.Error())
		}
		if res.Value != uint64(db.RetCSuccess) {
			return db.NewError(db.RetCode(res.Value), string(res.Data))
		}
		return nil
	}
	return db.NewError(db.RetCInternalError, "timeout")
}

// read is a generic helper function that queries the state machine
// and attempts to convert the response into the expected type R.
//
// This function uses the SyncRead function (dragonboat) by default to query the state machine.
// If linearizability is not required, the stale parameter can be set to true to use the faster StaleRead function.
//
// If the read operation fails due to a system busy error, the function retries up to 5 times.
//
// It returns the response of type R and an error (nil on success).
func read[R any](r *storeImpl, q internal.Query, stale bool) (R, error) {
	var zero R
	for i := 0; i < retries; i++ {

		var res interface{}
		var err error

		// Query the state machine, use StaleRead if stale is set otherwise use SyncRead (default)
		if stale {
			res, err = r.nh.StaleRead(r.shardID, q)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			res, err = r.nh.SyncRead(ctx, r.shardID, q)
			cancel()
		}

		// Check for system busy errors
		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncRead: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(r.timeout / 10)
			continue
		}

		if err != nil {
			var dbErr *db.Error
			if errors.As(err, &dbErr) {
				return zero, dbErr
			}
			return zero, db.NewError(db.RetCInternalError, err.Error())
		}

		// The state machine is expected to return the response in the expected type R.
		casted, ok := res.(R)
		if !ok {
			return zero, db.NewError(db.RetCInternalError,
				fmt.Sprintf("unexpected type: received %T, expected %T", res, zero))
		}
		return casted, nil
	}
	return zero, db.NewError(db.RetCInternalError, "timeout")
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Has(key []byte) (bool, error) {
	if s.closed.Load() {
		return false, db.ErrClosed
	}
	return read[bool](s, internal.Query{
		Type: internal.QueryTHas,
		Key:  key,
	}, false)
}

func (s *storeImpl) Get(key []byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	res, err := read[internal.QueryResult](s, internal.Query{
		Type: internal.QueryTGet,
		Key:  key,
	}, false)
	if err != nil {
		return nil, err
	}
	if !res.Ok {
		return nil, db.ErrKeyNotFound
	}
	return res.Value, nil
}

func (s *storeImpl) Put(key []byte, value []byte) error {
	if s.closed.Load() {
		return db.ErrClosed
	}
	return s.write(internal.Command{
		Type:  internal.CommandTPut,
		Key:   key,
		Value: value,
	})
}

func (s *storeImpl) Delete(key []byte) error {
	if s.closed.Load() {
		return db.ErrClosed
	}
	return s.write(internal.Command{
		Type: internal.CommandTDelete,
		Key:  key,
	})
}

func (s *storeImpl) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return db.ErrClosed
	}
	return nil
}

func (s *storeImpl) HealthCheck() ([]byte, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	return read[[]byte](
		s,
		internal.Query{
			Type: internal.QueryTHealth,
		},
		true, // Note: allow for stale reads
	)
}

// --------------------------------------------------------------------------
// Iterator Factory
// --------------------------------------------------------------------------

func (s *storeImpl) NewIterator() (db.IIterator, error) {
	return s.NewIteratorWithStartAndPrefix(nil, nil)
}

func (s *storeImpl) NewIteratorWithStart(start []byte) (db.IIterator, error) {
	return s.NewIteratorWithStartAndPrefix(start, nil)
}

func (s *storeImpl) NewIteratorWithPrefix(prefix []byte) (db.IIterator, error) {
	return s.NewIteratorWithStartAndPrefix(nil, prefix)
}

// NewIteratorWithStartAndPrefix queries the state machine for a materialized
// snapshot of the matching entries and iterates over it locally.
func (s *storeImpl) NewIteratorWithStartAndPrefix(start, prefix []byte) (db.IIterator, error) {
	if s.closed.Load() {
		return nil, db.ErrClosed
	}
	pairs, err := read[[]db.KVPair](s, internal.Query{
		Type:   internal.QueryTSnapshot,
		Start:  start,
		Prefix: prefix,
	}, false)
	if err != nil {
		return nil, err
	}
	return db.NewSliceIterator(pairs), nil
}
