package packer

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/celeryq/gocelery/internal/errors"
)

// Encoder renders a (possibly compressed) byte payload as a string body
// suitable for a message's wire field, and back.
type Encoder interface {
	Encode(data []byte) (string, error)
	Decode(s string) ([]byte, error)
	Name() string
}

// PlaintextEncoder renders the payload as-is. It only makes sense paired
// with IdentityCompressor: once a compressor has scrambled the bytes they
// are no longer valid UTF-8 in general, so Decode refuses non-UTF-8 input
// rather than silently handing back garbage.
type PlaintextEncoder struct{}

func (PlaintextEncoder) Name() string { return "plaintext" }

func (PlaintextEncoder) Encode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.E(errors.Op("packer.PlaintextEncoder.Encode"), errors.ParseError, "payload is not valid UTF-8; pair plaintext encoding with identity compression only")
	}
	return string(data), nil
}

func (PlaintextEncoder) Decode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errors.E(errors.Op("packer.PlaintextEncoder.Decode"), errors.ParseError, "payload is not valid UTF-8")
	}
	return []byte(s), nil
}

// Base64Encoder renders the payload via the standard base64 alphabet.
type Base64Encoder struct{}

func (Base64Encoder) Name() string { return "base64" }

func (Base64Encoder) Encode(data []byte) (string, error) {
	return base64.StdEncoding.EncodeToString(data), nil
}

func (Base64Encoder) Decode(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.E(errors.Op("packer.Base64Encoder.Decode"), errors.ParseError, err)
	}
	return data, nil
}
