package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/lib/db/engines/memdb"
	"github.com/gkvlabs/gKV/lib/db/engines/raftdb"
	"github.com/gkvlabs/gKV/lib/db/guarded"
	"github.com/gkvlabs/gKV/rpc/common"
	"github.com/gkvlabs/gKV/rpc/serializer"
	"github.com/gkvlabs/gKV/rpc/transport"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the database it encapsulates and the adapter
// that handles requests for the database
type serverShard struct {
	Database db.IDatabase
	Adapter  IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	// Create shards map
	shardMap := xsync.NewMapOf[uint64, serverShard]()

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     shardMap,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(shardId uint64, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Get appropriate shard
		shard, ok := s.shards.Load(shardId)

		// Case shard does not exist -> error
		if !ok {
			respMsg = *common.NewErrorResponse("shard not found")
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = *common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
			} else {
				// Let the adapter handle the request
				respMsg = *shard.Adapter.Handle(&msg, shard.Database)
			}
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %v", err)
			return nil
		}
		return val
	})
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config)

	// Create the Dragonboat NodeHost
	var nodeHost *dragonboat.NodeHost
	var err error
	if s.config.HasRaftShard() {
		// Only create the NodeHost if we have raft shards
		nodeHost, err = dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
	}

	// Configure the timeout for raft proposals and reads
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	// CREATE SHARDS

	/*
		Note: A single RPC Server can have any number of raft and or local
		shards. Every shard's backend is wrapped in the corruption-latching
		decorator before it is served, so a shard that reports corruption is
		permanently fenced off without affecting the other shards.
	*/

	for _, shardConfig := range s.config.Shards {

		var backend db.IDatabase

		switch shardConfig.Type {
		case common.ShardTypeLocal:
			backend = memdb.New()
			Logger.Infof("created local database for shard %d", shardConfig.ShardID)

		case common.ShardTypeRaft:
			if nodeHost == nil {
				return fmt.Errorf("node host is nil, cannot create raft shard")
			}

			// Start Raft for the shard
			if err := nodeHost.StartConcurrentReplica(
				s.config.ClusterMembers,
				false,
				raftdb.CreateStateMachineFactory(memdb.New),
				s.config.ToDragonboatConfig(shardConfig.ShardID),
			); err != nil {
				return fmt.Errorf("failed to start shard %v: %w", shardConfig.ShardID, err)
			}

			backend = raftdb.New(nodeHost, shardConfig.ShardID, timeout)
			Logger.Infof("created raft database for shard %d", shardConfig.ShardID)

		default:
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}

		adapter := NewDatabaseServerAdapter()
		if registry := adapter.(*dbServerAdapterImpl).iterators; registry != nil {
			trackOpenIterators(shardConfig.ShardID, registry)
		}

		s.shards.Store(shardConfig.ShardID, serverShard{
			Database: guarded.New(backend),
			Adapter:  adapter,
		})
	}

	Logger.Infof("gKV setup completed successfully")

	// Start the metrics endpoint if configured
	if s.config.MetricsEndpoint != "" {
		go serveMetrics(s.config.MetricsEndpoint)
	}

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the shards and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
