package packer

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/celeryq/gocelery/internal/errors"
)

// Compressor reduces a serialized payload and restores it losslessly.
//
// No compression library in the retrieval pack wraps these two formats;
// compress/zlib and compress/gzip are the stdlib's own codecs for them and
// are kept uncontested rather than reimplemented against a third-party
// package.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Name() string
}

// IdentityCompressor performs no compression.
type IdentityCompressor struct{}

func (IdentityCompressor) Name() string                         { return "identity" }
func (IdentityCompressor) Compress(data []byte) ([]byte, error) { return data, nil }
func (IdentityCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// ZlibCompressor uses compress/zlib.
type ZlibCompressor struct{}

func (ZlibCompressor) Name() string { return "zlib" }

func (ZlibCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, errors.E(errors.Op("packer.ZlibCompressor.Compress"), errors.ParseError, err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.E(errors.Op("packer.ZlibCompressor.Compress"), errors.ParseError, err)
	}
	return buf.Bytes(), nil
}

func (ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.E(errors.Op("packer.ZlibCompressor.Decompress"), errors.ParseError, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.E(errors.Op("packer.ZlibCompressor.Decompress"), errors.ParseError, err)
	}
	return out, nil
}

// GzipCompressor uses compress/gzip.
type GzipCompressor struct{}

func (GzipCompressor) Name() string { return "gzip" }

func (GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, errors.E(errors.Op("packer.GzipCompressor.Compress"), errors.ParseError, err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.E(errors.Op("packer.GzipCompressor.Compress"), errors.ParseError, err)
	}
	return buf.Bytes(), nil
}

func (GzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.E(errors.Op("packer.GzipCompressor.Decompress"), errors.ParseError, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.E(errors.Op("packer.GzipCompressor.Decompress"), errors.ParseError, err)
	}
	return out, nil
}
