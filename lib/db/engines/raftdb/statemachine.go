package raftdb

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/lib/db/engines/raftdb/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// KVStateMachine is a state machine implementation for Dragonboat RAFT
type KVStateMachine struct {
	replicaID uint64
	shardID   uint64
	database  db.IDatabase // the actual dataStorage
}

// CreateStateMachineFactory returns a function that can be used by dragonboat to create a new state machine for a node host
// The factory pattern is used to enable the caller to pass an interchangeable database factory
func CreateStateMachineFactory(dbFactory db.DatabaseFactory) func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return &KVStateMachine{
			replicaID: replicaID,
			shardID:   shardID,
			database:  dbFactory(),
		}
	}
}

// Lookup handles read-only queries by mapping each Query operation to the corresponding IDatabase method.
func (fsm *KVStateMachine) Lookup(itf interface{}) (interface{}, error) {

	// try to parse Query into Query struct
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, db.NewError(db.RetCInternalError, fmt.Sprintf("invalid Query type: %T", itf))
	}

	// Handle different Query types
	switch q.Type {
	case internal.QueryTGet:
		val, err := fsm.database.Get(q.Key)
		if err != nil {
			if db.IsNotFound(err) {
				return internal.QueryResult{Ok: false}, nil
			}
			return nil, err
		}
		return internal.QueryResult{Ok: true, Value: val}, nil
	case internal.QueryTHas:
		return fsm.database.Has(q.Key)
	case internal.QueryTHealth:
		return fsm.database.HealthCheck()
	case internal.QueryTSnapshot:
		return fsm.snapshot(q.Start, q.Prefix)
	default:
		return nil, db.NewError(db.RetCInvalidOperation, fmt.Sprintf("unknown Query operation: %d", q.Type))
	}
}

// snapshot materializes all entries matching the bounds into a sorted pair
// list. This is how iterators are served across the consensus boundary.
func (fsm *KVStateMachine) snapshot(start, prefix []byte) ([]db.KVPair, error) {
	it, err := fsm.database.NewIteratorWithStartAndPrefix(start, prefix)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var pairs []db.KVPair
	for it.Next() {
		pairs = append(pairs, db.KVPair{
			Key:   append([]byte(nil), it.Key()...),
			Value: append([]byte(nil), it.Value()...),
		})
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// Update handles write commands on the IDatabase instance
// All write operations are serialized into []byte and are accessible via the entries struct
func (fsm *KVStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {

	// Nothing to do
	if len(entries) == 0 {
		return entries, nil
	}

	// Stats
	start := time.Now()

	for idx, e := range entries {
		// Handle each entry
		if len(e.Cmd) == 0 {
			entries[idx].Result = sm.Result{Value: uint64(db.RetCInvalidOperation), Data: []byte("empty command ignored")}
			continue
		}
		// Deserialize the command
		cmd := internal.Command{}
		if err := cmd.Deserialize(e.Cmd); err != nil {
			entries[idx].Result = sm.Result{Value: uint64(db.RetCInternalError), Data: []byte(fmt.Sprintf("failed to deserialize command: %v", err))}
			continue
		}

		switch cmd.Type {
		case internal.CommandTPut:
			if err := fsm.database.Put(cmd.Key, cmd.Value); err != nil {
				entries[idx].Result = resultForError(err)
				continue
			}
			entries[idx].Result = sm.Result{
				Value: uint64(db.RetCSuccess),
				Data:  []byte(fmt.Sprintf("put: key=%s", cmd.Key)),
			}
		case internal.CommandTDelete:
			if err := fsm.database.Delete(cmd.Key); err != nil {
				entries[idx].Result = resultForError(err)
				continue
			}
			entries[idx].Result = sm.Result{
				Value: uint64(db.RetCSuccess),
				Data:  []byte(fmt.Sprintf("deleted key=%s", cmd.Key)),
			}
		default:
			entries[idx].Result = sm.Result{
				Value: uint64(db.RetCInvalidOperation),
				Data:  []byte(fmt.Sprintf("unknown Command operation: %s", cmd.Type)),
			}
		}
	}

	// Log if the update took long
	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("Statemachine took long to update. Batch updated %d entries, took %.2fms", len(entries), float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// resultForError maps a database error to a raft result, preserving the
// typed return code so the proposer can reconstruct the exact error.
func resultForError(err error) sm.Result {
	var dbErr *db.Error
	if errors.As(err, &dbErr) {
		return sm.Result{Value: uint64(dbErr.Code), Data: []byte(dbErr.Msg)}
	}
	return sm.Result{Value: uint64(db.RetCInternalError), Data: []byte(err.Error())}
}

// PrepareSnapshot is not used. We don't need to prepare anything since we use fuzzy snapshotting
func (fsm *KVStateMachine) PrepareSnapshot() (interface{}, error) {
	return nil, nil
}

// SaveSnapshot streams the full database content to the writer
func (fsm *KVStateMachine) SaveSnapshot(_ interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, _ <-chan struct{}) error {
	it, err := fsm.database.NewIterator()
	if err != nil {
		return err
	}
	defer it.Release()
	return internal.WriteSnapshot(writer, it)
}

// RecoverFromSnapshot replays a saved snapshot into the database
func (fsm *KVStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, _ <-chan struct{}) error {
	return internal.ReadSnapshot(r, fsm.database.Put)
}

// Close performs any necessary cleanup.
func (fsm *KVStateMachine) Close() error {
	return fsm.database.Close()
}
