package build

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ixsearch/internal/index"
	"ixsearch/internal/normalize"
	"ixsearch/internal/query"
	"ixsearch/internal/universe"
)

// seedCorpus writes the four-document fixture behind the evaluator
// scenarios: a→[0] b→[0,1] r→[1] y→[0,1,2] z→[0,1,2] s→[0,1] bb→[2],
// with doc 3 holding only qq, so it matches none of the seed terms.
func seedCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	docs := map[int]string{
		0: "a b y z s",
		1: "b r y z s",
		2: "y z bb",
		3: "qq",
	}
	for id, text := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, strconv.Itoa(id)), []byte(text), 0o644))
	}
	return dir
}

func runBuild(t *testing.T, corpusDir, outDir string, maxLines int) Stats {
	t.Helper()
	stats, err := Run(Options{
		CorpusDir:    corpusDir,
		DictPath:     filepath.Join(outDir, "dict.txt"),
		PostingsPath: filepath.Join(outDir, "postings.txt"),
		MaxLines:     maxLines,
	})
	require.NoError(t, err)
	return stats
}

func TestBuildEndToEnd(t *testing.T) {
	corpusDir := seedCorpus(t)
	outDir := t.TempDir()

	stats := runBuild(t, corpusDir, outDir, 1000)
	assert.Equal(t, 4, stats.Documents)
	assert.Equal(t, 1, stats.Blocks)
	assert.Equal(t, 8, stats.Terms)

	uni, err := universe.ReadFile(filepath.Join(outDir, UniverseFileName))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, uni.Sorted())

	r, err := index.NewReader(filepath.Join(outDir, "dict.txt"), filepath.Join(outDir, "postings.txt"))
	require.NoError(t, err)
	defer r.Close()

	expected := map[string][]int{
		"a":  {0},
		"b":  {0, 1},
		"bb": {2},
		"qq": {3},
		"r":  {1},
		"s":  {0, 1},
		"y":  {0, 1, 2},
		"z":  {0, 1, 2},
	}
	for term, docs := range expected {
		fields, err := r.GetPostings(term)
		require.NoError(t, err)
		assert.Equal(t, docs, index.DecodeDocs(fields), "term %q", term)
		assert.Equal(t, len(docs), r.GetSize(term), "term %q", term)
	}
}

func TestBuildThenQuery(t *testing.T) {
	corpusDir := seedCorpus(t)
	outDir := t.TempDir()
	runBuild(t, corpusDir, outDir, 1000)

	r, err := index.NewReader(filepath.Join(outDir, "dict.txt"), filepath.Join(outDir, "postings.txt"))
	require.NoError(t, err)
	defer r.Close()

	uni, err := universe.ReadFile(filepath.Join(outDir, UniverseFileName))
	require.NoError(t, err)

	ix := &query.Index{Reader: r, Universe: uni}
	memo := normalize.NewMemo()

	testCases := []struct {
		q        string
		expected []int
	}{
		{"a AND b", []int{0}},
		{"a OR z", []int{0, 1, 2}},
		{"NOT z", []int{3}},
		{"(y AND z) AND NOT (a OR r)", []int{2}},
		{"NOT s AND NOT a", []int{2, 3}},
		{"z AND NOT NOT bb", []int{2}},
	}
	for _, tc := range testCases {
		root, err := query.Parse(tc.q, memo)
		require.NoError(t, err)
		docs, err := query.Execute(root, ix)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, docs, "query %q", tc.q)
	}
}

func TestBuildSpillsMultipleBlocks(t *testing.T) {
	corpusDir := seedCorpus(t)
	outDir := t.TempDir()

	// a tiny pair cap forces several SPIMI flushes, so the merge has real
	// work to do; the final index must come out the same
	stats := runBuild(t, corpusDir, outDir, 3)
	assert.Greater(t, stats.Blocks, 1)

	r, err := index.NewReader(filepath.Join(outDir, "dict.txt"), filepath.Join(outDir, "postings.txt"))
	require.NoError(t, err)
	defer r.Close()

	fields, err := r.GetPostings("y")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, index.DecodeDocs(fields))

	fields, err = r.GetPostings("z")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, index.DecodeDocs(fields))
}

func TestBuildIdempotent(t *testing.T) {
	corpusDir := seedCorpus(t)
	outDir := t.TempDir()

	runBuild(t, corpusDir, outDir, 1000)
	first, err := os.ReadFile(filepath.Join(outDir, "dict.txt"))
	require.NoError(t, err)
	firstPostings, err := os.ReadFile(filepath.Join(outDir, "postings.txt"))
	require.NoError(t, err)

	runBuild(t, corpusDir, outDir, 1000)
	second, err := os.ReadFile(filepath.Join(outDir, "dict.txt"))
	require.NoError(t, err)
	secondPostings, err := os.ReadFile(filepath.Join(outDir, "postings.txt"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstPostings, secondPostings)
}

func TestBuildEmptyCorpus(t *testing.T) {
	corpusDir := t.TempDir()
	outDir := t.TempDir()

	stats := runBuild(t, corpusDir, outDir, 1000)
	assert.Equal(t, 0, stats.Documents)
	assert.Equal(t, 0, stats.Blocks)
	assert.Equal(t, 0, stats.Terms)

	dict, err := os.ReadFile(filepath.Join(outDir, "dict.txt"))
	require.NoError(t, err)
	assert.Empty(t, dict)
}

func TestBuildAbortsOnUnreadableDocument(t *testing.T) {
	corpusDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "0"), []byte("fine"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "1"), []byte("locked"), 0o000))

	outDir := t.TempDir()
	_, err := Run(Options{
		CorpusDir:    corpusDir,
		DictPath:     filepath.Join(outDir, "dict.txt"),
		PostingsPath: filepath.Join(outDir, "postings.txt"),
		MaxLines:     1000,
	})
	if os.Getuid() == 0 {
		// root reads through 0o000 modes, the permission probe is moot
		t.Skip("running as root, unreadable-file setup is ineffective")
	}
	assert.Error(t, err)
}
