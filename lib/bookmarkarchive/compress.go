// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bookmarkarchive

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload compression algorithm.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression maps a configuration name to a Compression. The empty
// string selects zstd.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	case "none":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want zstd, lz4, or none)", name)
	}
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic("bookmarkarchive: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(MaxBodySize)))
	if err != nil {
		panic("bookmarkarchive: zstd decoder initialization failed: " + err.Error())
	}
}

func compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock reports 0 for input it cannot shrink. The block
		// format has no stored mode, so fall back to a literal-only block.
		if written == 0 {
			return lz4LiteralBlock(data), nil
		}
		return destination[:written], nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
}

func decompress(data []byte, compression Compression, size int) ([]byte, error) {
	switch compression {
	case CompressionNone:
		if len(data) != size {
			return nil, fmt.Errorf("uncompressed payload is %d bytes, header says %d", len(data), size)
		}
		return data, nil
	case CompressionLZ4:
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(data, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, header says %d", read, size)
		}
		return destination, nil
	case CompressionZstd:
		decoded, err := zstdDecoder.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(decoded) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, header says %d", len(decoded), size)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
}

// lz4LiteralBlock encodes data as a single LZ4 sequence with no match.
func lz4LiteralBlock(data []byte) []byte {
	length := len(data)
	block := make([]byte, 0, length+length/255+2)
	if length < 15 {
		block = append(block, byte(length<<4))
	} else {
		block = append(block, 0xf0)
		remaining := length - 15
		for remaining >= 255 {
			block = append(block, 255)
			remaining -= 255
		}
		block = append(block, byte(remaining))
	}
	return append(block, data...)
}
