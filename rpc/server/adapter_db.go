package server

import (
	"fmt"
	"time"

	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/rpc/common"
)

// NewDatabaseServerAdapter creates an adapter that maps RPC messages to
// db.IDatabase operations. The adapter owns the server-side iterators of its
// shard, so every shard needs its own adapter instance.
func NewDatabaseServerAdapter() IRPCServerAdapter {
	return &dbServerAdapterImpl{
		iterators: newIteratorRegistry(),
	}
}

type dbServerAdapterImpl struct {
	iterators *iteratorRegistry
}

func (adapter *dbServerAdapterImpl) Handle(req *common.Message, database db.IDatabase) *common.Message {
	// Check for nil database
	if database == nil {
		return common.NewErrorResponse("handler: database is nil")
	}

	start := time.Now()
	resp := adapter.handle(req, database)
	observeResponse(req.MsgType, start, resp)
	return resp
}

// handle dispatches a single request to the database.
func (adapter *dbServerAdapterImpl) handle(req *common.Message, database db.IDatabase) *common.Message {
	switch req.MsgType {
	case common.MsgTDBHas:
		ok, err := database.Has(req.Key)
		return common.NewHasResponse(ok, err)
	case common.MsgTDBGet:
		val, err := database.Get(req.Key)
		return common.NewGetResponse(val, err)
	case common.MsgTDBPut:
		err := database.Put(req.Key, req.Value)
		return common.NewPutResponse(err)
	case common.MsgTDBDelete:
		err := database.Delete(req.Key)
		return common.NewDeleteResponse(err)
	case common.MsgTDBHealth:
		report, err := database.HealthCheck()
		return common.NewHealthResponse(report, err)
	case common.MsgTDBIterNew:
		it, err := database.NewIteratorWithStartAndPrefix(req.Start, req.Prefix)
		if err != nil {
			return common.NewIterNewResponse(0, err)
		}
		return common.NewIterNewResponse(adapter.iterators.register(it), nil)
	case common.MsgTDBIterNext:
		it, ok := adapter.iterators.get(req.ID)
		if !ok {
			return unknownIteratorResponse(req)
		}
		if !it.Next() {
			return common.NewIterNextResponse(false, nil, nil, nil)
		}
		return common.NewIterNextResponse(true, it.Key(), it.Value(), nil)
	case common.MsgTDBIterErr:
		it, ok := adapter.iterators.get(req.ID)
		if !ok {
			return unknownIteratorResponse(req)
		}
		return common.NewIterErrResponse(it.Error())
	case common.MsgTDBIterRelease:
		adapter.iterators.release(req.ID)
		return common.NewIterReleaseResponse()
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC DatabaseAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

func unknownIteratorResponse(req *common.Message) *common.Message {
	resp := &common.Message{MsgType: req.MsgType}
	resp.SetError(db.NewError(db.RetCInvalidOperation, fmt.Sprintf("unknown iterator handle: %d", req.ID)))
	return resp
}
