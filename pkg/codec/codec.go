// Package codec encodes graph state into byte blobs: a Codec turns values
// into bytes and a Pipeline adds optional compression on top.
package codec

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts values to and from bytes.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// JSON is the codec used for the persisted graph format.
type JSON struct{}

func (JSON) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSON) Name() string { return "json" }

// MessagePack is a compact binary codec. Interface values decode loosely:
// integers as int64, floats as float64, maps as map[string]any.
type MessagePack struct{}

func (MessagePack) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MessagePack) Decode(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	dec.UseLooseInterfaceDecoding(true)
	return dec.Decode(v)
}

func (MessagePack) Name() string { return "msgpack" }

// Compression names a compression algorithm applied after encoding.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Pipeline encodes with a codec and then compresses.
type Pipeline struct {
	Codec       Codec
	Compression Compression
}

// Snapshot is the pipeline used for undo snapshots and compact blobs.
var Snapshot = Pipeline{Codec: MessagePack{}, Compression: CompressionZstd}

// Marshal encodes and compresses v.
func (p Pipeline) Marshal(v any) ([]byte, error) {
	data, err := p.Codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("%s encode: %w", p.Codec.Name(), err)
	}
	data, err = p.compress(data)
	if err != nil {
		return nil, fmt.Errorf("%s compress: %w", p.Compression, err)
	}
	return data, nil
}

// Unmarshal decompresses and decodes data into v.
func (p Pipeline) Unmarshal(data []byte, v any) error {
	data, err := p.decompress(data)
	if err != nil {
		return fmt.Errorf("%s decompress: %w", p.Compression, err)
	}
	if err := p.Codec.Decode(data, v); err != nil {
		return fmt.Errorf("%s decode: %w", p.Codec.Name(), err)
	}
	return nil
}

func (p Pipeline) compress(data []byte) ([]byte, error) {
	switch p.Compression {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstdEncoder()
		if err != nil {
			return nil, err
		}
		return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
	default:
		return data, nil
	}
}

func (p Pipeline) decompress(data []byte) ([]byte, error) {
	switch p.Compression {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, err
		}
		return dec.DecodeAll(data, nil)
	default:
		return data, nil
	}
}

// The zstd coders are safe for concurrent EncodeAll/DecodeAll calls and
// expensive to build, so one of each is shared.
var (
	zstdOnce sync.Once
	zenc     *zstd.Encoder
	zdec     *zstd.Decoder
	zerr     error
)

func initZstd() {
	zenc, zerr = zstd.NewWriter(nil)
	if zerr != nil {
		return
	}
	zdec, zerr = zstd.NewReader(nil)
}

func zstdEncoder() (*zstd.Encoder, error) {
	zstdOnce.Do(initZstd)
	return zenc, zerr
}

func zstdDecoder() (*zstd.Decoder, error) {
	zstdOnce.Do(initZstd)
	return zdec, zerr
}
