// Package client implements the RPC client for the distributed key-value
// store system. It provides an implementation of the db.IDatabase interface
// that communicates with remote server shards via RPC.
//
// The package focuses on:
//   - Transparent RPC access to a remote database shard
//   - Integration with the transport and serialization layers
//   - Error fidelity: typed database errors (including their return codes)
//     survive the wire, so db.IsNotFound and db.IsCorruption work on client
//     errors exactly as on the server
//   - Remote iterators driven lazily, one entry per round trip
//
// Key Components:
//
//   - NewRPCDatabase: Factory function that creates a client implementing the
//     db.IDatabase interface. This client forwards all operations to the
//     configured remote shard via the transport layer.
//
//   - remoteIterator: db.IIterator implementation that drives a server-side
//     iterator handle via IterNext/IterErr/IterRelease messages.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  Endpoints:              []string{"localhost:5000"},
//	  TimeoutSecond:          5,
//	  RetryCount:             3,
//	  ConnectionsPerEndpoint: 1,
//	}
//
//	// Create database client for shard 1
//	database, _ := client.NewRPCDatabase(1, config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//
//	// Use the database
//	database.Put([]byte("mykey"), []byte("myvalue"))
//	value, err := database.Get([]byte("mykey"))
//
//	// Iterate over a prefix
//	it, _ := database.NewIteratorWithPrefix([]byte("my"))
//	defer it.Release()
//	for it.Next() {
//	  fmt.Printf("%s = %s\n", it.Key(), it.Value())
//	}
//
// Note that Close only closes the client's transport. Shards are shared
// between clients, so no client can close the remote database itself.
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	The database client is thread-safe and can be used concurrently from
//	multiple goroutines. Individual iterators are not thread-safe and must
//	be confined to one goroutine.
package client
