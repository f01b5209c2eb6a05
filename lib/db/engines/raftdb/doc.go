// Package raftdb implements a distributed, fault-tolerant database using
// the Dragonboat RAFT consensus library. It provides a strongly consistent
// implementation of the db.IDatabase interface that can operate across
// multiple nodes while maintaining linearizable consistency.
//
// Architecture:
//
// The raftdb implementation consists of three main components:
//
//   - Database Client: Implements the db.IDatabase interface and communicates
//     with the RAFT cluster. It serializes operations into commands, sends them
//     to the consensus layer, and processes responses.
//
//   - State Machine: A Dragonboat IConcurrentStateMachine implementation that
//     processes commands and queries on each node. The state machine contains
//     the actual db.IDatabase instance (typically a memdb engine) and applies
//     operations to it.
//
//   - Communication Protocol: Defined in the internal package, this consists of
//     Command and Query structures with serialization logic for transmitting
//     operations across the network.
//
// Write Operations:
//
//	All write operations (Put, Delete) follow this flow:
//
//	1. The operation is serialized into a Command structure
//	2. The Command is proposed to the RAFT cluster via SyncPropose
//	3. The leader node replicates the command to a majority of followers
//	4. Once committed, the command is executed on the state machine on each
//	   node (Update method in statemachine.go)
//	5. The result is returned to the client, carrying the typed return code of
//	   the state machine's database so errors survive the consensus boundary
//
// Read Operations:
//
//   - Linearizable Reads: Get, Has and the iterator snapshot query use
//     SyncRead, which guarantees the operation sees the latest committed state
//     of the database regardless of which node processes the read.
//
//   - Stale Reads: HealthCheck uses StaleRead, which may return slightly
//     outdated information but with lower latency.
//
// Iterators:
//
//	Iterator requests are answered by materializing all matching entries on
//	the state machine into a sorted pair list and iterating over it locally
//	on the client. The iterator is therefore a consistent snapshot taken at
//	creation time.
//
// Error Handling and Retries:
//
//	When Dragonboat returns ErrSystemBusy, the operation is retried after a
//	short delay, up to a fixed number of attempts. All operations have a
//	configurable timeout; if consensus cannot be reached within this period,
//	the operation fails with a timeout error.
//
// Snapshotting and Recovery:
//
//	The state machine creates fuzzy snapshots by streaming all pairs of the
//	underlying database to the snapshot writer. On recovery, the pairs are
//	replayed via Put, after which the node catches up on all RAFT log entries
//	committed after the snapshot was created.
//
// Usage:
//
//	  // Create NodeHost (RAFT client)
//	  nh, err := dragonboat.NewNodeHost(nodeHostConfig)
//	  if err != nil { ... }
//
//	  // Create and start shard (RAFT server)
//	  err := nh.StartConcurrentReplica(
//	      clusterMembers,
//	      false,
//	      raftdb.CreateStateMachineFactory(memdb.New),
//	      shardConfig)
//	  if err != nil { ... }
//
//	  // Create database handle with appropriate timeout
//	  database := raftdb.New(nh, shardID, 5*time.Second)
//
//	  // Wait for shard readiness then begin operations
//	  // ...
//
// For scenarios where distributed consensus is not required, consider using
// the simpler and faster memdb engine, which provides a single-node
// non-persistent implementation of the same interface.
package raftdb
