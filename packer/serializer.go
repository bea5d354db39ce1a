package packer

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/celeryq/gocelery/internal/errors"
)

// Serializer turns a Go value into a byte-oriented wire form and back.
type Serializer interface {
	Serialize(v interface{}) ([]byte, error)
	Deserialize(data []byte, v interface{}) error
	Name() string
}

// JsonSerializer uses encoding/json.
type JsonSerializer struct{}

func (JsonSerializer) Name() string { return "json" }

func (JsonSerializer) Serialize(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.E(errors.Op("packer.JsonSerializer.Serialize"), errors.ParseError, err)
	}
	return b, nil
}

func (JsonSerializer) Deserialize(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.E(errors.Op("packer.JsonSerializer.Deserialize"), errors.ParseError, err)
	}
	return nil
}

// YamlSerializer uses gopkg.in/yaml.v3.
//
// YAML has no representation for an undefined/missing value the way JSON's
// omitted-key or explicit-null does for every type; yaml.v3 silently
// renders Go's nil interface as the bare scalar "null", which is NOT the
// same thing as "this value was never there" once round-tripped back
// through Deserialize. Serialize rejects a top-level nil outright so the
// mismatch surfaces at pack time instead of silently changing meaning on
// unpack.
type YamlSerializer struct{}

func (YamlSerializer) Name() string { return "yaml" }

func (YamlSerializer) Serialize(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, errors.E(errors.Op("packer.YamlSerializer.Serialize"), errors.ParseError, "yaml cannot round-trip an undefined top-level value")
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, errors.E(errors.Op("packer.YamlSerializer.Serialize"), errors.ParseError, err)
	}
	return b, nil
}

func (YamlSerializer) Deserialize(data []byte, v interface{}) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.E(errors.Op("packer.YamlSerializer.Deserialize"), errors.ParseError, err)
	}
	return nil
}
