// Package server provides the RPC server components that expose databases
// over the network.
//
// The package focuses on:
//   - Multi-shard serving: one server process hosts any number of shards,
//     each backed by a local in-memory database or a raft-replicated one
//   - Corruption fencing: every shard backend is wrapped in the
//     corruption-latching decorator (lib/db/guarded) before it is served,
//     so a backend that reports corruption is permanently fenced off while
//     the remaining shards keep working
//   - Server-side iterators: iterator handles are registered per shard and
//     driven by the client via IterNext/IterErr/IterRelease messages
//   - Metrics: request counts, error counts per return code, latency
//     summaries and open-iterator gauges, exposed in Prometheus format
//
// Key Components:
//
//   - IRPCServerAdapter: Interface mapping protocol messages to database
//     operations. NewDatabaseServerAdapter provides the implementation for
//     the db.IDatabase capability bundle.
//
//   - rpcServer: Wires the configured transport, serializer and shards
//     together. Created via NewRPCServer, started via Serve.
//
//   - iteratorRegistry: Per-shard registry of open server-side iterators,
//     addressed by uint64 handles.
package server
