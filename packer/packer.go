// Package packer implements the serialize/compress/encode pipeline used to
// turn task arguments and results into the string bodies Celery messages
// carry on the wire, and back.
package packer

import "github.com/celeryq/gocelery/internal/errors"

// Packer composes a Serializer, Compressor and Encoder into a single
// pack/unpack pipeline: Pack runs Serialize -> Compress -> Encode in that
// order, Unpack runs the inverse in reverse.
type Packer struct {
	Serializer Serializer
	Compressor Compressor
	Encoder    Encoder
}

// Default returns the Json/Identity/Base64 packer Celery clients use when
// no serializer/compressor is configured explicitly.
func Default() *Packer {
	return &Packer{
		Serializer: JsonSerializer{},
		Compressor: IdentityCompressor{},
		Encoder:    Base64Encoder{},
	}
}

// Pack serializes, compresses and encodes v into its wire string form.
func (p *Packer) Pack(v interface{}) (string, error) {
	const op = "packer.Packer.Pack"

	serialized, err := p.Serializer.Serialize(v)
	if err != nil {
		return "", errors.E(errors.Op(op), err)
	}
	compressed, err := p.Compressor.Compress(serialized)
	if err != nil {
		return "", errors.E(errors.Op(op), err)
	}
	encoded, err := p.Encoder.Encode(compressed)
	if err != nil {
		return "", errors.E(errors.Op(op), err)
	}
	return encoded, nil
}

// Unpack decodes, decompresses and deserializes s into v, which must be a
// pointer to a value the Serializer can populate.
func (p *Packer) Unpack(s string, v interface{}) error {
	const op = "packer.Packer.Unpack"

	decoded, err := p.Encoder.Decode(s)
	if err != nil {
		return errors.E(errors.Op(op), err)
	}
	decompressed, err := p.Compressor.Decompress(decoded)
	if err != nil {
		return errors.E(errors.Op(op), err)
	}
	if err := p.Serializer.Deserialize(decompressed, v); err != nil {
		return errors.E(errors.Op(op), err)
	}
	return nil
}

// ContentType reports the MIME-ish content-type string a message carrying
// this packer's output should declare, mirroring Celery's
// "application/<serializer>" convention.
func (p *Packer) ContentType() string {
	return "application/" + p.Serializer.Name()
}

// ContentEncoding reports the name of this packer's byte encoder
// ("base64" or "plaintext"). Task messages do not use it for their
// content-encoding field, which is always "utf-8".
func (p *Packer) ContentEncoding() string {
	return p.Encoder.Name()
}
