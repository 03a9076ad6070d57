package manparse_test

import (
	"testing"

	"github.com/fwojciec/manparse"
	"github.com/stretchr/testify/assert"
)

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	t.Run("indexes words, categories and complexity", func(t *testing.T) {
		t.Parallel()

		docs := []*manparse.Document{
			{
				Name: "ls", Section: 1, Category: "User Commands",
				Complexity: manparse.ComplexityBasic, SearchContent: "ls list directory contents",
			},
			{
				Name: "dir", Section: 1, Category: "User Commands",
				Complexity: manparse.ComplexityIntermediate, SearchContent: "dir list directory contents directory",
			},
		}

		idx := manparse.BuildIndex(docs)

		assert.Equal(t, []string{"dir.1", "ls.1"}, idx.Words["directory"])
		assert.Equal(t, []string{"ls.1"}, idx.Words["ls"])
		assert.Equal(t, []string{"dir.1", "ls.1"}, idx.Categories["User Commands"])
		assert.Equal(t, []string{"ls.1"}, idx.Complexity[manparse.ComplexityBasic])
		assert.Equal(t, []string{"dir.1"}, idx.Complexity[manparse.ComplexityIntermediate])
	})

	t.Run("skips single-character words", func(t *testing.T) {
		t.Parallel()

		docs := []*manparse.Document{{Name: "x", Section: 7, SearchContent: "x a tool"}}

		idx := manparse.BuildIndex(docs)

		assert.NotContains(t, idx.Words, "x")
		assert.NotContains(t, idx.Words, "a")
		assert.Contains(t, idx.Words, "tool")
	})

	t.Run("returns empty maps for no documents", func(t *testing.T) {
		t.Parallel()

		idx := manparse.BuildIndex(nil)

		assert.Empty(t, idx.Words)
		assert.Empty(t, idx.Categories)
		assert.Empty(t, idx.Complexity)
	})
}
