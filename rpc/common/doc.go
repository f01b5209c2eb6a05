// Package common provides core data structures and utilities shared across
// the database RPC system. It defines fundamental types, configuration
// structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for inter-component communication
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with Dragonboat
//   - Utilities for Dragonboat (RAFT) integration
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between
//     components, with a flexible structure that adapts to different
//     operation types. Includes factory methods for creating the various
//     request and response messages, and carries the typed return code of
//     database errors so error classification survives the wire.
//
//   - MessageType: Enumeration defining all supported operation types in the
//     system, categorized into database operations, iterator operations, and
//     control messages.
//
//   - ServerConfig: Comprehensive configuration for server nodes, including
//     RAFT parameters, storage settings, network configuration, and shard
//     layout. Provides utilities for converting to Dragonboat-specific
//     configurations.
//
//   - ClientConfig: Configuration for client components, controlling
//     connection parameters, timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation that integrates with
//     Dragonboat's logging system while providing consistent formatting
//     across the application.
package common
