package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gkvlabs/gKV/lib/db"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key    []byte `json:"key,omitempty"`    // Used for: Has, Get, Put, Delete requests, IterNext responses
	Value  []byte `json:"value,omitempty"`  // Used for: Put (request), Get, Health, IterNext (responses)
	Start  []byte `json:"start,omitempty"`  // Used for: IterNew requests
	Prefix []byte `json:"prefix,omitempty"` // Used for: IterNew requests
	ID     uint64 `json:"id,omitempty"`     // Iterator handle, used for all Iter operations

	// Response only fields
	Ok      bool   `json:"ok,omitempty"`       // Used for: Has, IterNext responses
	Err     string `json:"err,omitempty"`      // Empty if no error, otherwise contains the error message
	ErrCode uint64 `json:"err_code,omitempty"` // Typed db.RetCode, set alongside Err

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// --------------------------------------------------------------------------
// Error Conversion
// --------------------------------------------------------------------------

// SetError stores an error in the message, preserving the typed return code
// of *db.Error values so the receiving side can reconstruct the exact error.
func (m *Message) SetError(err error) {
	if err == nil {
		return
	}
	var dbErr *db.Error
	if errors.As(err, &dbErr) {
		m.Err = dbErr.Msg
		m.ErrCode = uint64(dbErr.Code)
		return
	}
	m.Err = err.Error()
	m.ErrCode = uint64(db.RetCInternalError)
}

// GetError reconstructs the error stored via SetError, or nil if the message
// carries no error.
func (m *Message) GetError() error {
	if m.Err == "" && m.ErrCode == uint64(db.RetCSuccess) {
		return nil
	}
	return db.NewError(db.RetCode(m.ErrCode), m.Err)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewHasRequest creates a new Has request
func NewHasRequest(key []byte) *Message {
	return &Message{
		MsgType: MsgTDBHas,
		Key:     key,
	}
}

// NewHasResponse creates a new Has response
func NewHasResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTDBHas,
		Ok:      ok,
	}
	msg.SetError(err)
	return msg
}

// NewGetRequest creates a new Get request
func NewGetRequest(key []byte) *Message {
	return &Message{
		MsgType: MsgTDBGet,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTDBGet,
		Value:   value,
	}
	msg.SetError(err)
	return msg
}

// NewPutRequest creates a new Put request
func NewPutRequest(key, value []byte) *Message {
	return &Message{
		MsgType: MsgTDBPut,
		Key:     key,
		Value:   value,
	}
}

// NewPutResponse creates a new Put response
func NewPutResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTDBPut,
	}
	msg.SetError(err)
	return msg
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key []byte) *Message {
	return &Message{
		MsgType: MsgTDBDelete,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTDBDelete,
	}
	msg.SetError(err)
	return msg
}

// NewHealthRequest creates a new HealthCheck request
func NewHealthRequest() *Message {
	return &Message{
		MsgType: MsgTDBHealth,
	}
}

// NewHealthResponse creates a new HealthCheck response
func NewHealthResponse(report []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTDBHealth,
		Value:   report,
	}
	msg.SetError(err)
	return msg
}

// NewIterNewRequest creates a new iterator creation request
func NewIterNewRequest(start, prefix []byte) *Message {
	return &Message{
		MsgType: MsgTDBIterNew,
		Start:   start,
		Prefix:  prefix,
	}
}

// NewIterNewResponse creates a new iterator creation response
func NewIterNewResponse(id uint64, err error) *Message {
	msg := &Message{
		MsgType: MsgTDBIterNew,
		ID:      id,
	}
	msg.SetError(err)
	return msg
}

// NewIterNextRequest creates a new iterator advance request
func NewIterNextRequest(id uint64) *Message {
	return &Message{
		MsgType: MsgTDBIterNext,
		ID:      id,
	}
}

// NewIterNextResponse creates a new iterator advance response.
// Ok indicates whether the iterator moved to a pair; Key and Value hold the
// current pair when it did.
func NewIterNextResponse(ok bool, key, value []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTDBIterNext,
		Ok:      ok,
		Key:     key,
		Value:   value,
	}
	msg.SetError(err)
	return msg
}

// NewIterErrRequest creates a new iterator error query request
func NewIterErrRequest(id uint64) *Message {
	return &Message{
		MsgType: MsgTDBIterErr,
		ID:      id,
	}
}

// NewIterErrResponse creates a new iterator error query response
func NewIterErrResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTDBIterErr,
	}
	msg.SetError(err)
	return msg
}

// NewIterReleaseRequest creates a new iterator release request
func NewIterReleaseRequest(id uint64) *Message {
	return &Message{
		MsgType: MsgTDBIterRelease,
		ID:      id,
	}
}

// NewIterReleaseResponse creates a new iterator release response
func NewIterReleaseResponse() *Message {
	return &Message{
		MsgType: MsgTDBIterRelease,
	}
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
	msg.SetError(err)
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
		ErrCode: uint64(db.RetCInternalError),
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTDBHas:
		return "has"
	case MsgTDBGet:
		return "get"
	case MsgTDBPut:
		return "put"
	case MsgTDBDelete:
		return "delete"
	case MsgTDBHealth:
		return "health"
	case MsgTDBIterNew:
		return "iterNew"
	case MsgTDBIterNext:
		return "iterNext"
	case MsgTDBIterErr:
		return "iterErr"
	case MsgTDBIterRelease:
		return "iterRelease"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "has":
		*t = MsgTDBHas
	case "get":
		*t = MsgTDBGet
	case "put":
		*t = MsgTDBPut
	case "delete":
		*t = MsgTDBDelete
	case "health":
		*t = MsgTDBHealth
	case "iterNew":
		*t = MsgTDBIterNew
	case "iterNext":
		*t = MsgTDBIterNext
	case "iterErr":
		*t = MsgTDBIterErr
	case "iterRelease":
		*t = MsgTDBIterRelease
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IDatabase operations

	MsgTDBHas    // Check if a key exists
	MsgTDBGet    // Get a value by key
	MsgTDBPut    // Insert or update a key-value pair
	MsgTDBDelete // Delete a key-value pair
	MsgTDBHealth // Retrieve the health report of the database

	// Iterator operations

	MsgTDBIterNew     // Create a server-side iterator
	MsgTDBIterNext    // Advance an iterator and fetch the current pair
	MsgTDBIterErr     // Query the error state of an iterator
	MsgTDBIterRelease // Release a server-side iterator

	// Custom operations

	MsgTCustom // Custom operation type
)
