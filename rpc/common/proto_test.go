package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/gkvlabs/gKV/lib/db"
)

// The typed return code must survive the wire so clients can reconstruct
// the exact error, including corruption classification.
func TestMessageErrorRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode db.RetCode
	}{
		{"corruption", db.NewCorruptionError("checksum mismatch in block 7"), db.RetCCorruption},
		{"not found", db.ErrKeyNotFound, db.RetCNotFound},
		{"closed", db.ErrClosed, db.RetCClosed},
		{"untyped", errors.New("something broke"), db.RetCInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewPutResponse(tt.err)

			// simulate the wire
			data, err := json.Marshal(msg)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			var received Message
			if err := json.Unmarshal(data, &received); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			got := received.GetError()
			if got == nil {
				t.Fatal("Expected an error after round trip")
			}
			var dbErr *db.Error
			if !errors.As(got, &dbErr) {
				t.Fatalf("Expected *db.Error, got %T", got)
			}
			if dbErr.Code != tt.wantCode {
				t.Errorf("Expected code %v, got %v", tt.wantCode, dbErr.Code)
			}
		})
	}
}

func TestMessageNoError(t *testing.T) {
	msg := NewPutResponse(nil)
	if err := msg.GetError(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestMessageTypeJSONRoundTrip(t *testing.T) {
	types := []MessageType{
		MsgTSuccess, MsgTError, MsgTDBHas, MsgTDBGet, MsgTDBPut, MsgTDBDelete,
		MsgTDBHealth, MsgTDBIterNew, MsgTDBIterNext, MsgTDBIterErr,
		MsgTDBIterRelease, MsgTCustom,
	}

	for _, mt := range types {
		t.Run(mt.String(), func(t *testing.T) {
			data, err := json.Marshal(mt)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if want := fmt.Sprintf("%q", mt.String()); string(data) != want {
				t.Errorf("Expected %s, got %s", want, data)
			}

			var parsed MessageType
			if err := json.Unmarshal(data, &parsed); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if parsed != mt {
				t.Errorf("Round trip changed type: got %v, want %v", parsed, mt)
			}
		})
	}
}

func TestMessageTypeUnmarshalUnknown(t *testing.T) {
	var mt MessageType
	if err := json.Unmarshal([]byte(`"bogus"`), &mt); err == nil {
		t.Error("Expected error for unknown message type")
	}
}
