package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(name string) *manparse.Document {
	return &manparse.Document{
		Name:       name,
		Section:    1,
		Title:      name + " manual page",
		Category:   "User Commands",
		Sections:   []manparse.Section{{ID: "name", Title: "NAME", Content: name, Level: 1}},
		Complexity: manparse.ComplexityBasic,
	}
}

// Story: Atomic Publishing
// The store writes to a pending directory and publishes on Commit.

func TestStore_CreateDocumentWritesToPendingDirectory(t *testing.T) {
	t.Parallel()

	// Given a store targeting a directory
	out := filepath.Join(t.TempDir(), "output")
	store := fs.NewStore(out)

	// When I write a document
	err := store.CreateDocument(context.Background(), testDocument("ls"))
	require.NoError(t, err)

	// Then the file exists in the pending directory only
	_, err = os.Stat(filepath.Join(out+".tmp", "ls.1.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "ls.1.json"))
	assert.True(t, os.IsNotExist(err), "output should not exist until commit")
}

func TestStore_CommitPublishesPendingFiles(t *testing.T) {
	t.Parallel()

	// Given a store with a written document
	out := filepath.Join(t.TempDir(), "output")
	store := fs.NewStore(out)
	doc := testDocument("ls")
	require.NoError(t, store.CreateDocument(context.Background(), doc))

	// When I commit
	require.NoError(t, store.Commit())

	// Then the document is published and decodes back
	data, err := os.ReadFile(filepath.Join(out, "ls.1.json"))
	require.NoError(t, err)
	var got manparse.Document
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ls manual page", got.Title)

	// And the pending directory is gone
	_, err = os.Stat(out + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_CommitKeepsUntouchedFiles(t *testing.T) {
	t.Parallel()

	// Given a published document from an earlier run
	out := filepath.Join(t.TempDir(), "output")
	first := fs.NewStore(out)
	require.NoError(t, first.CreateDocument(context.Background(), testDocument("ls")))
	require.NoError(t, first.Commit())

	// When a later run publishes a different document
	second := fs.NewStore(out)
	require.NoError(t, second.CreateDocument(context.Background(), testDocument("cat")))
	require.NoError(t, second.Commit())

	// Then both documents are present
	for _, name := range []string{"ls.1.json", "cat.1.json"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestStore_CommitWithNothingPendingCreatesOutput(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "output")

	require.NoError(t, fs.NewStore(out).Commit())

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_AbortDiscardsPendingFiles(t *testing.T) {
	t.Parallel()

	// Given a store with a written document
	out := filepath.Join(t.TempDir(), "output")
	store := fs.NewStore(out)
	require.NoError(t, store.CreateDocument(context.Background(), testDocument("ls")))

	// When I abort
	require.NoError(t, store.Abort())

	// Then neither directory exists
	_, err := os.Stat(out + ".tmp")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_RejectsInvalidDocument(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(filepath.Join(t.TempDir(), "output"))

	err := store.CreateDocument(context.Background(), &manparse.Document{Name: "../../etc/passwd", Section: 1})

	assert.Equal(t, manparse.EMALFORMED, manparse.ErrorCode(err))
}

func TestStore_WriteIndex(t *testing.T) {
	t.Parallel()

	// Given an index built from documents
	out := filepath.Join(t.TempDir(), "output")
	store := fs.NewStore(out)
	idx := manparse.BuildIndex([]*manparse.Document{{Name: "ls", Section: 1, Category: "User Commands", Complexity: manparse.ComplexityBasic, SearchContent: "ls list"}})

	// When I write and commit it
	require.NoError(t, store.WriteIndex(context.Background(), idx))
	require.NoError(t, store.Commit())

	// Then each index file is published
	data, err := os.ReadFile(filepath.Join(out, fs.IndexDir, "words.json"))
	require.NoError(t, err)
	var words map[string][]string
	require.NoError(t, json.Unmarshal(data, &words))
	assert.Equal(t, []string{"ls.1"}, words["list"])

	for _, name := range []string{"categories.json", "complexity.json"} {
		_, err := os.Stat(filepath.Join(out, fs.IndexDir, name))
		assert.NoError(t, err, name)
	}
}

func TestStore_EncodeConvertsDocuments(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "output")
	store := fs.NewStore(out)
	store.Encode = func(doc *manparse.Document) any {
		return map[string]string{"only": doc.Name}
	}

	require.NoError(t, store.CreateDocument(context.Background(), testDocument("ls")))
	require.NoError(t, store.Commit())

	data, err := os.ReadFile(filepath.Join(out, "ls.1.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"only":"ls"}`, string(data))
}
