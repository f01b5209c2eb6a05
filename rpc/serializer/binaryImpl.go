package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/gkvlabs/gKV/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey     uint16 = 1 << 0
	hasValue   uint16 = 1 << 1
	hasStart   uint16 = 1 << 2
	hasPrefix  uint16 = 1 << 3
	hasID      uint16 = 1 << 4
	hasOk      uint16 = 1 << 5
	hasErr     uint16 = 1 << 6
	hasErrCode uint16 = 1 << 7
	hasMeta    uint16 = 1 << 8
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags
	var flags uint16 = 0

	// Set position for writing
	pos := 3 // Start after MsgType and flags

	// writeBytes appends a length-prefixed byte field
	writeBytes := func(data []byte) {
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(data)))
		pos += 4
		copy(result[pos:pos+len(data)], data)
		pos += len(data)
	}

	// Handle Key
	if msg.Key != nil {
		flags |= hasKey
		writeBytes(msg.Key)
	}

	// Handle Value
	if msg.Value != nil {
		flags |= hasValue
		writeBytes(msg.Value)
	}

	// Handle Start
	if msg.Start != nil {
		flags |= hasStart
		writeBytes(msg.Start)
	}

	// Handle Prefix
	if msg.Prefix != nil {
		flags |= hasPrefix
		writeBytes(msg.Prefix)
	}

	// Handle ID
	if msg.ID > 0 {
		flags |= hasID
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.ID)
		pos += 8
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		writeBytes([]byte(msg.Err))
	}

	// Handle ErrCode
	if msg.ErrCode > 0 {
		flags |= hasErrCode
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.ErrCode)
		pos += 8
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		writeBytes(msg.Meta)
	}

	// Set flags after knowing which fields are present
	binary.BigEndian.PutUint16(result[1:3], flags)

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 3 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := binary.BigEndian.Uint16(data[1:3])

	// Initialize read position
	pos := 3

	// readBytes reads a length-prefixed byte field, reusing buf if possible
	readBytes := func(name string, buf []byte) ([]byte, error) {
		if pos+4 > len(data) {
			return nil, fmt.Errorf("data too short for %s length", name)
		}
		fieldLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		if pos+fieldLen > len(data) {
			return nil, fmt.Errorf("data too short for %s data", name)
		}

		// Allocate only if needed
		if buf == nil || cap(buf) < fieldLen {
			buf = make([]byte, fieldLen)
		} else {
			buf = buf[:fieldLen]
		}
		copy(buf, data[pos:pos+fieldLen])
		pos += fieldLen
		return buf, nil
	}

	var err error

	// Read Key if present
	if flags&hasKey != 0 {
		if msg.Key, err = readBytes("key", msg.Key); err != nil {
			return err
		}
	} else {
		msg.Key = nil
	}

	// Read Value if present
	if flags&hasValue != 0 {
		if msg.Value, err = readBytes("value", msg.Value); err != nil {
			return err
		}
	} else {
		msg.Value = nil
	}

	// Read Start if present
	if flags&hasStart != 0 {
		if msg.Start, err = readBytes("start", msg.Start); err != nil {
			return err
		}
	} else {
		msg.Start = nil
	}

	// Read Prefix if present
	if flags&hasPrefix != 0 {
		if msg.Prefix, err = readBytes("prefix", msg.Prefix); err != nil {
			return err
		}
	} else {
		msg.Prefix = nil
	}

	// Read ID if present
	if flags&hasID != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for ID")
		}
		msg.ID = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.ID = 0
	}

	// Read Ok if present
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}
		msg.Ok = data[pos] != 0
		pos += 1
	} else {
		msg.Ok = false
	}

	// Read Err if present
	if flags&hasErr != 0 {
		errBytes, err := readBytes("error", nil)
		if err != nil {
			return err
		}
		msg.Err = string(errBytes)
	} else {
		msg.Err = ""
	}

	// Read ErrCode if present
	if flags&hasErrCode != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for ErrCode")
		}
		msg.ErrCode = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.ErrCode = 0
	}

	// Read Meta if present
	if flags&hasMeta != 0 {
		if msg.Meta, err = readBytes("meta", msg.Meta); err != nil {
			return err
		}
	} else {
		msg.Meta = nil
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 2 bytes for flags
	size := 3

	// Add sizes for fields that require length encoding
	if msg.Key != nil {
		size += 4 + len(msg.Key)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Start != nil {
		size += 4 + len(msg.Start)
	}
	if msg.Prefix != nil {
		size += 4 + len(msg.Prefix)
	}
	if msg.ID > 0 {
		size += 8 // uint64
	}
	if msg.Ok {
		size += 1 // 1 byte for boolean
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.ErrCode > 0 {
		size += 8 // uint64
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}
