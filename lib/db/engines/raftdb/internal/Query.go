package internal

// QueryType defines the possible read-only queries for the state machine.
type QueryType uint8

const (
	QueryTGet      QueryType = iota // Retrieve an entry by key.
	QueryTHas                       // Check if a key exists.
	QueryTHealth                    // Retrieve the health report of the underlying database.
	QueryTSnapshot                  // Materialize all entries matching the start and prefix bounds.
)

func (q QueryType) String() string {
	switch q {
	case QueryTGet:
		return "Get"
	case QueryTHas:
		return "Has"
	case QueryTHealth:
		return "Health"
	case QueryTSnapshot:
		return "Snapshot"
	default:
		return "Unknown"
	}
}

// Query defines the structure for lookup requests (read-only) sent via
// SyncRead or StaleRead.
type Query struct {
	Type   QueryType // The type of Query to perform.
	Key    []byte    // The key for the Query (unset for some queries).
	Start  []byte    // Lower bound for QueryTSnapshot.
	Prefix []byte    // Key prefix filter for QueryTSnapshot.
}

// QueryResult is the result of a QueryTGet operation.
// All other query results are primitive types or predefined structs
// (bool, []byte, []db.KVPair).
type QueryResult struct {
	Ok    bool
	Value []byte
}
