package packer

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fixedObj struct {
	Bar int `json:"bar" yaml:"bar"`
	Foo int `json:"foo" yaml:"foo"`
}

type fixedValue struct {
	Arr []int    `json:"arr" yaml:"arr"`
	Num int      `json:"num" yaml:"num"`
	Obj fixedObj `json:"obj" yaml:"obj"`
	Str string   `json:"str" yaml:"str"`
}

func sampleValue() fixedValue {
	return fixedValue{
		Arr: []int{0, 5, 10},
		Num: 15,
		Obj: fixedObj{Bar: 10, Foo: 5},
		Str: "foo",
	}
}

func TestPacker_RoundTripsAcrossEveryCombination(t *testing.T) {
	serializers := []Serializer{JsonSerializer{}, YamlSerializer{}}
	compressors := []Compressor{IdentityCompressor{}, ZlibCompressor{}, GzipCompressor{}}
	encoders := []Encoder{Base64Encoder{}}

	for _, ser := range serializers {
		for _, comp := range compressors {
			for _, enc := range encoders {
				p := &Packer{Serializer: ser, Compressor: comp, Encoder: enc}

				in := sampleValue()
				packed, err := p.Pack(in)
				require.NoError(t, err, "%s/%s/%s", ser.Name(), comp.Name(), enc.Name())

				var out fixedValue
				require.NoError(t, p.Unpack(packed, &out), "%s/%s/%s", ser.Name(), comp.Name(), enc.Name())

				if diff := cmp.Diff(in, out); diff != "" {
					t.Fatalf("%s/%s/%s round-trip mismatch:\n%s", ser.Name(), comp.Name(), enc.Name(), diff)
				}
			}
		}
	}
}

func TestPacker_PlaintextRequiresIdentityCompression(t *testing.T) {
	p := &Packer{Serializer: JsonSerializer{}, Compressor: IdentityCompressor{}, Encoder: PlaintextEncoder{}}
	in := sampleValue()

	packed, err := p.Pack(in)
	require.NoError(t, err)

	var out fixedValue
	require.NoError(t, p.Unpack(packed, &out))
	require.True(t, cmp.Equal(in, out))

	p.Compressor = ZlibCompressor{}
	_, err = p.Pack(in)
	require.Error(t, err)
}

func TestPacker_DefaultMatchesBase64OfUtf8Json(t *testing.T) {
	in := sampleValue()

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	want := base64.StdEncoding.EncodeToString(raw)

	got, err := Default().Pack(in)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestYamlSerializer_RejectsNilTopLevelValue(t *testing.T) {
	_, err := YamlSerializer{}.Serialize(nil)
	require.Error(t, err)
}
