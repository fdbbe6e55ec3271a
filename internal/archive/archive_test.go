package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesoro-dev/tesoro/internal/config"
)

func TestDir_Archive(t *testing.T) {
	root := t.TempDir()
	d := Dir(root)

	loc, err := d.Archive(context.Background(), "acct/2024/03/batch-statement.csv", strings.NewReader("fecha;importe\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "acct", "2024", "03", "batch-statement.csv"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "fecha;importe\n", string(data))
}

func TestNew_Selects(t *testing.T) {
	a, err := New(context.Background(), config.ArchiveConfig{Dir: "x"})
	require.NoError(t, err)
	assert.Equal(t, Dir("x"), a)

	a, err = New(context.Background(), config.ArchiveConfig{})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, a)
}

func TestURI(t *testing.T) {
	uri := URI("statements", "tesoro/acct/2024/03/b-file.csv")
	assert.Equal(t, "gs://statements/tesoro/acct/2024/03/b-file.csv", uri)

	bucket, object, err := ParseURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "statements", bucket)
	assert.Equal(t, "tesoro/acct/2024/03/b-file.csv", object)

	for _, bad := range []string{"s3://x/y", "gs://bucket", "gs:///obj"} {
		_, _, err := ParseURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestGCS_ObjectName(t *testing.T) {
	g := &GCS{bucket: "b", prefix: "tesoro"}
	assert.Equal(t, "tesoro/a/b.csv", g.ObjectName("a/b.csv"))
	g.prefix = ""
	assert.Equal(t, "a/b.csv", g.ObjectName("a/b.csv"))
}
