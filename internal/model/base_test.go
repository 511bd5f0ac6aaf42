package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMapRoundTrip(t *testing.T) {
	m := JSONMap{"status": "confirmed", "provider_id": "abc"}

	v, err := m.Value()
	require.NoError(t, err)
	raw, ok := v.([]byte)
	require.True(t, ok)
	assert.JSONEq(t, `{"status":"confirmed","provider_id":"abc"}`, string(raw))

	var out JSONMap
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, m, out)
}

func TestJSONMapScanString(t *testing.T) {
	var out JSONMap
	require.NoError(t, out.Scan(`{"status":"pending"}`))
	assert.Equal(t, JSONMap{"status": "pending"}, out)
}

func TestJSONMapNil(t *testing.T) {
	var m JSONMap
	v, err := m.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	out := JSONMap{"stale": true}
	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)
}

func TestJSONMapScanUnsupported(t *testing.T) {
	var out JSONMap
	assert.Error(t, out.Scan(42))
}
