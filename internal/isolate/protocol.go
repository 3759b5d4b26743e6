package isolate

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxMessageSize is the maximum allowed frame payload (16 MiB).
const MaxMessageSize = 16 << 20

// DefaultBatchSize is the number of lines a worker packs into one message
// when the request does not say otherwise.
const DefaultBatchSize = 512

// Request is the coordinator→worker payload.
type Request struct {
	File      string `json:"file"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// Result is the final report of a worker.
type Result struct {
	File  string `json:"file"`
	Lines int64  `json:"lines"`
	Error string `json:"error,omitempty"`
}

// Worker→coordinator message types.
const (
	MsgTypeLines  = "lines"
	MsgTypeResult = "result"
)

// Message is the envelope for all worker→coordinator messages.
// While reading, the worker sends line batches with Type="lines".
// When done it sends exactly one message with Type="result".
type Message struct {
	Type   string   `json:"type"`
	Lines  []string `json:"lines,omitempty"`
	Result *Result  `json:"result,omitempty"`
}

// WriteMessage writes a length-prefixed JSON message to w.
// The frame format is: 4-byte big-endian length prefix followed by the JSON payload.
func WriteMessage(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if len(data) > MaxMessageSize {
		return fmt.Errorf("message size %d exceeds maximum %d", len(data), MaxMessageSize)
	}

	length := uint32(len(data))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	return nil
}

// ReadMessage reads a length-prefixed JSON message from r and decodes it into v.
func ReadMessage(r io.Reader, v any) error {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return fmt.Errorf("read length prefix: %w", err)
	}

	if length > MaxMessageSize {
		return fmt.Errorf("message size %d exceeds maximum %d", length, MaxMessageSize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	return nil
}
