package extraction

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitae/internal/profile/models"
	dErrors "vitae/pkg/domain-errors"
)

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "cv.docx")
	require.NoError(t, os.WriteFile(source+".json", []byte(`{"full_name": "Jane Doe", "email": "jane@example.com"}`), 0o600))
	require.NoError(t, os.WriteFile(source+".txt", []byte("Jane Doe\nEngineer"), 0o600))

	p := NewFileProvider()

	t.Run("reads sidecar extraction and prompt text", func(t *testing.T) {
		out, err := p.Extract(context.Background(), &models.Document{SourcePath: source})
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", out.Result.FullName.String())
		assert.Contains(t, out.RawResponse, "jane@example.com")
		assert.Contains(t, out.Prompt, "Jane Doe\nEngineer")
	})

	t.Run("missing sidecar is an external failure", func(t *testing.T) {
		_, err := p.Extract(context.Background(), &models.Document{SourcePath: filepath.Join(dir, "other.docx")})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeExternal))
	})

	t.Run("document without source path is rejected", func(t *testing.T) {
		_, err := p.Extract(context.Background(), &models.Document{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Extract(ctx, &models.Document{SourcePath: source})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}
