package uri

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUri_GenericQueryRepeatedKeys(t *testing.T) {
	u, err := ParseUri("s://h?key=value&key=value2")
	require.NoError(t, err)
	require.Equal(t, []string{"value", "value2"}, u.Query["key"])
}

func TestParseUri_HttpSchemeIsSyntacticallyFine(t *testing.T) {
	// the generic parser does not restrict scheme recognition; that is
	// the job of the per-scheme Celery parsers.
	u, err := ParseUri("http://h")
	require.NoError(t, err)
	require.Equal(t, Scheme("http"), u.Scheme)
}

func TestParseAMQPUri_HttpSchemeRejected(t *testing.T) {
	_, err := ParseAMQPUri("http://h")
	require.Error(t, err)
}

func TestParseUri_EmptyAuthorityOnBareScheme(t *testing.T) {
	u, err := ParseUri("amqp://")
	require.NoError(t, err)
	require.Nil(t, u.Authority)
}

func TestParsePort_RejectsOctalLookingAndOutOfRange(t *testing.T) {
	_, err := ParsePort("0123")
	require.Error(t, err)

	_, err = ParsePort("70000")
	require.Error(t, err)

	p, err := ParsePort("0")
	require.NoError(t, err)
	require.Equal(t, 0, p)
}

func TestValidateHost_RejectsOverlongLabel(t *testing.T) {
	over := make([]byte, 64)
	for i := range over {
		over[i] = 'a'
	}
	err := ValidateHost(string(over))
	require.Error(t, err)

	require.NoError(t, ValidateHost("my-host.example.com"))
}
