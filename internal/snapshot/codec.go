package snapshot

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/promdump/promdump/internal/graph"
)

// On-disk layout: 5-byte magic, 1 flag byte, then the CBOR document of the
// (stats, graph) pair, zstd-framed when the flag says so.
var magic = []byte("PROM\x01")

const (
	flagNone byte = 0
	flagZstd byte = 1
)

// shared zstd encoder/decoder; EncodeAll/DecodeAll are safe for concurrent use
var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func encode(s *graph.Snapshot, compress bool) ([]byte, error) {
	payload, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	flag := flagNone
	if compress {
		flag = flagZstd
		payload = zstdEncoder.EncodeAll(payload, make([]byte, 0, len(payload)))
	}

	out := make([]byte, 0, len(magic)+1+len(payload))
	out = append(out, magic...)
	out = append(out, flag)
	out = append(out, payload...)
	return out, nil
}

func decode(data []byte) (*graph.Snapshot, error) {
	if len(data) <= len(magic) || !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("%w: bad header", ErrCorruptData)
	}

	flag := data[len(magic)]
	payload := data[len(magic)+1:]

	switch flag {
	case flagNone:
	case flagZstd:
		var err error
		payload, err = zstdDecoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown flag 0x%x", ErrCorruptData, flag)
	}

	var s graph.Snapshot
	if err := cbor.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if s.Graph == nil {
		return nil, fmt.Errorf("%w: missing object graph", ErrCorruptData)
	}
	return &s, nil
}
