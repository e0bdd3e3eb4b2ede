package evidence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "simple", key: "shot.png", want: "shot.png"},
		{name: "nested", key: "run/1/shot.png", want: "run/1/shot.png"},
		{name: "backslashes", key: `run\shot.png`, want: "run/shot.png"},
		{name: "inner dots", key: "run/../other/shot.png", want: "other/shot.png"},
		{name: "empty", key: "", wantErr: true},
		{name: "blank", key: "   ", wantErr: true},
		{name: "absolute", key: "/etc/passwd", wantErr: true},
		{name: "parent", key: "../shot.png", wantErr: true},
		{name: "escaping", key: "run/../../shot.png", wantErr: true},
		{name: "dot", key: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		s, err := NewStore(ctx, Config{Type: "LOCAL", BaseDir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &LocalStore{}, s)
	})

	t.Run("local without base dir", func(t *testing.T) {
		_, err := NewStore(ctx, Config{Type: "local"})
		assert.Error(t, err)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		_, err := NewStore(ctx, Config{Type: "s3", Region: "eu-west-1"})
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewStore(ctx, Config{Type: "ftp"})
		assert.ErrorIs(t, err, ErrUnsupportedStore)
	})
}
