package mmdbkit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGZRoundTrip(t *testing.T) {
	db := &Database{
		Root:     &Node{Left: NewLeaf(Map{{Key: String("x"), Value: Uint32(7)}}), Right: nil},
		Metadata: testMetadata(),
	}

	path := filepath.Join(t.TempDir(), "test.mmdb.gz")
	require.NoError(t, db.WriteGZ(path))

	got, err := ReadGZ(path)
	require.NoError(t, err)
	require.Equal(t, db.Metadata.DatabaseType, got.Metadata.DatabaseType)

	leaf := got.Root.Left.(*Leaf)
	require.Equal(t, Map{{Key: String("x"), Value: Uint32(7)}}, leaf.Value)
}

func TestReadGZRejectsPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.mmdb")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o644))

	_, err := ReadGZ(path)
	require.Error(t, err)
}

func TestReadWriteRoundTripViaDisk(t *testing.T) {
	db := &Database{
		Root:     &Node{Left: NewLeaf(Bool(true)), Right: nil},
		Metadata: testMetadata(),
	}

	path := filepath.Join(t.TempDir(), "test.mmdb")
	require.NoError(t, db.Write(path))

	got, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, db.Metadata.DatabaseType, got.Metadata.DatabaseType)
	require.Equal(t, Bool(true), got.Root.Left.(*Leaf).Value)
}
