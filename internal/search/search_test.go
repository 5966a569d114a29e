package search

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonl2md/jsonl2md/internal/index"
)

func indexedDB(t *testing.T, fixtures map[string][2]string) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	root := t.TempDir()
	i := 0
	for name, texts := range fixtures {
		i++
		content := fmt.Sprintf(
			`{"type":"user","sessionId":"s1","cwd":"/work","timestamp":"2026-02-0%dT10:00:00Z","message":{"role":"user","content":%q}}
{"type":"assistant","sessionId":"s1","timestamp":"2026-02-0%dT10:00:10Z","message":{"role":"assistant","content":[{"type":"text","text":%q}]}}
`, i, texts[0], i, texts[1])
		require.NoError(t, os.WriteFile(filepath.Join(root, name+".jsonl"), []byte(content), 0o644))
	}

	_, err = index.IndexAll(db, []string{root})
	require.NoError(t, err)
	return db
}

func TestSearchFTS(t *testing.T) {
	db := indexedDB(t, map[string][2]string{
		"alpha": {"how do I configure kubernetes ingress", "use an ingress controller"},
		"beta":  {"unrelated chatter about lunch", "sounds tasty"},
	})

	hits, err := Search(db, Options{Query: "kubernetes"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "alpha", hits[0].Key)
	assert.Equal(t, "user", hits[0].Role)
	assert.Contains(t, hits[0].Snippet, ">>>kubernetes<<<")
}

func TestSearchDedupesPerTranscript(t *testing.T) {
	db := indexedDB(t, map[string][2]string{
		"alpha": {"deploy the service", "the service is deployed, service healthy"},
	})

	hits, err := Search(db, Options{Query: "service"})
	require.NoError(t, err)
	assert.Len(t, hits, 1, "one best hit per transcript")
}

func TestSearchRoleFilter(t *testing.T) {
	db := indexedDB(t, map[string][2]string{
		"alpha": {"please restart nginx", "nginx restarted"},
	})

	hits, err := Search(db, Options{Query: "nginx", Role: "assistant"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "assistant", hits[0].Role)
}

func TestSearchSinceFilter(t *testing.T) {
	db := indexedDB(t, map[string][2]string{
		"alpha": {"migrate the database", "done"},
	})

	hits, err := Search(db, Options{Query: "migrate", Since: "2027-01-01"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchCJKUsesSubstringMatch(t *testing.T) {
	db := indexedDB(t, map[string][2]string{
		"alpha": {"帮我修复这个测试", "好的"},
	})

	hits, err := Search(db, Options{Query: "测试"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Snippet, ">>>测试<<<")
}

func TestSearchNoMatches(t *testing.T) {
	db := indexedDB(t, map[string][2]string{
		"alpha": {"hello", "world"},
	})

	hits, err := Search(db, Options{Query: "zzzmissing"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestListAllNewestFirst(t *testing.T) {
	db := indexedDB(t, map[string][2]string{
		"older": {"first conversation", "ok"},
		"newer": {"second conversation", "ok"},
	})

	hits, err := ListAll(db, Options{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.True(t, hits[0].UpdatedAt >= hits[1].UpdatedAt)
	for _, h := range hits {
		assert.Equal(t, -1, h.Seq)
		assert.Equal(t, h.Title, h.Snippet)
	}
}

func TestContainsCJK(t *testing.T) {
	assert.True(t, containsCJK("找 bug"))
	assert.False(t, containsCJK("plain ascii"))
	assert.False(t, containsCJK("カタカナ")) // kana only, no Han
}

func TestMakeSnippet(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and keeps running far away"
	snip := makeSnippet(text, "jumps", 10)
	assert.Contains(t, snip, ">>>jumps<<<")
	assert.Contains(t, snip, "...")

	assert.Equal(t, "short", makeSnippet("short", "absent", 10))
}
