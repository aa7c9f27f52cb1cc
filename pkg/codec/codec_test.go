package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string         `json:"name"`
	Count  int            `json:"count"`
	Values map[string]any `json:"values"`
}

func TestPipelineRoundTrip(t *testing.T) {
	in := sample{
		Name:  "cube",
		Count: 3,
		Values: map[string]any{
			"size":   2.5,
			"offset": []any{1.0, 0.0, -1.0},
			"label":  "a",
			"on":     true,
			"nested": map[string]any{"k": 1.5},
		},
	}

	for _, p := range []Pipeline{
		{Codec: JSON{}, Compression: CompressionNone},
		{Codec: JSON{}, Compression: CompressionGzip},
		{Codec: MessagePack{}, Compression: CompressionNone},
		{Codec: MessagePack{}, Compression: CompressionZstd},
		Snapshot,
	} {
		t.Run(p.Codec.Name()+"/"+string(p.Compression), func(t *testing.T) {
			data, err := p.Marshal(in)
			require.NoError(t, err)

			var out sample
			require.NoError(t, p.Unmarshal(data, &out))
			if diff := cmp.Diff(in, out); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMessagePackUsesJSONFieldNames(t *testing.T) {
	data, err := MessagePack{}.Encode(sample{Name: "x"})
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, MessagePack{}.Decode(data, &generic))
	assert.Contains(t, generic, "name")
	assert.Contains(t, generic, "values")
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var out sample
	assert.Error(t, Snapshot.Unmarshal([]byte("not zstd"), &out))
	assert.Error(t, Pipeline{Codec: JSON{}, Compression: CompressionGzip}.Unmarshal([]byte("nope"), &out))
	assert.Error(t, Pipeline{Codec: JSON{}}.Unmarshal([]byte("{"), &out))
}
