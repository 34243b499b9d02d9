package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ContentType is the media type snapshots travel as over the sync API.
const ContentType = "application/zstd"

// Codec serializes snapshots as zstd-compressed JSON. Encoder and decoder
// are stateless between calls and safe for concurrent use via EncodeAll and
// DecodeAll.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a snapshot codec.
func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Encode marshals and compresses a snapshot.
func (c *Codec) Encode(snap *Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

// Decode decompresses and unmarshals a snapshot payload.
func (c *Codec) Decode(data []byte) (*Snapshot, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
