package internal

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gkvlabs/gKV/lib/db"
)

// WriteSnapshot streams all pairs of the iterator to the writer as a
// sequence of length-prefixed records:
// 4 bytes key length (big endian),
// N bytes key data,
// 4 bytes value length (big endian),
// N bytes value data.
// The stream ends at EOF, there is no trailing marker.
func WriteSnapshot(w io.Writer, it db.IIterator) error {
	bw := bufio.NewWriter(w)
	var lenBuf [4]byte

	for it.Next() {
		key, value := it.Key(), it.Value()

		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(key)))
		if _, err := bw.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := bw.Write(key); err != nil {
			return err
		}

		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(value)))
		if _, err := bw.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := bw.Write(value); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return err
	}

	return bw.Flush()
}

// ReadSnapshot reads the records written by WriteSnapshot and applies each
// pair via put.
func ReadSnapshot(r io.Reader, put func(key, value []byte) error) error {
	br := bufio.NewReader(r)
	var lenBuf [4]byte

	for {
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read key length: %w", err)
		}
		key := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(br, key); err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}

		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			return fmt.Errorf("failed to read value length: %w", err)
		}
		value := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(br, value); err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}

		if err := put(key, value); err != nil {
			return err
		}
	}
}
