package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestTextFn_MotionsTrimsWhitespace(t *testing.T) {
	spec := Registry["motions"]
	require.Equal(t, "moved to approve", spec.TextFn([]*string{strp("  moved to approve  ")}))
}

func TestTextFn_JoinNonEmptySkipsNilColumns(t *testing.T) {
	require.Equal(t, "title only", joinNonEmpty([]*string{strp("title only"), nil}))
	require.Equal(t, "title\nsummary", joinNonEmpty([]*string{strp("title"), strp("summary")}))
	require.Equal(t, "", joinNonEmpty([]*string{nil, nil}))
}

func TestRegistry_MinWordsMatchesOriginalDefaults(t *testing.T) {
	cases := map[string]int{
		"agenda_items":        0,
		"motions":             0,
		"matters":             0,
		"meetings":            0,
		"bylaws":              0,
		"bylaw_chunks":        0,
		"extracted_documents": 10,
		"key_statements":      5,
		"document_sections":   5,
	}
	for table, want := range cases {
		spec, ok := Registry[table]
		require.Truef(t, ok, "missing table spec: %s", table)
		require.Equalf(t, want, spec.MinWords, "table %s", table)
	}
}

func TestVectorLiteral_RendersPgvectorTextFormat(t *testing.T) {
	require.Equal(t, "[1,0.5,-2]", vectorLiteral([]float32{1, 0.5, -2}))
	require.Equal(t, "[]", vectorLiteral(nil))
}

// fakeEmbeddingProvider returns a fixed-width zero vector per input text,
// tagged with the input's length in the first component so tests can
// assert which texts were actually embedded.
type fakeEmbeddingProvider struct {
	calls [][]string
	dims  int
}

func (f *fakeEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, append([]string{}, texts...))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, f.dims)
		v[0] = float32(len(text))
		out[i] = v
	}
	return out, nil
}

func TestEmbedTable_UnknownTableErrors(t *testing.T) {
	e := New(&fakeEmbeddingProvider{dims: 4}, nil, defaultTestConfig())
	_, err := e.EmbedTable(context.Background(), "not_a_table", false, -1)
	require.Error(t, err)
}
