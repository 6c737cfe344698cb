package vars

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr string
	}{
		{
			name:  "single pair",
			input: "A=1",
			want:  map[string]string{"A": "1"},
		},
		{
			name:  "last occurrence wins",
			input: "A=1,B=2,A=3",
			want:  map[string]string{"A": "3", "B": "2"},
		},
		{
			name:  "trims whitespace",
			input: " A = 1 , B=  two words ",
			want:  map[string]string{"A": "1", "B": "two words"},
		},
		{
			name:  "value keeps later equals signs",
			input: "DSN=user=x",
			want:  map[string]string{"DSN": "user=x"},
		},
		{
			name:  "empty value",
			input: "A=",
			want:  map[string]string{"A": ""},
		},
		{
			name:  "blank input",
			input: "   ",
			want:  map[string]string{},
		},
		{
			name:    "missing equals",
			input:   "A=1,B",
			wantErr: `missing value in "B"`,
		},
		{
			name:    "missing key",
			input:   "=1",
			wantErr: `missing key in "=1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePairs(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromEnviron(t *testing.T) {
	got := FromEnviron([]string{"A=1", "B=x=y", "BROKEN", "EMPTY=", "A=2"})
	assert.Equal(t, map[string]string{"A": "2", "B": "x=y", "EMPTY": ""}, got)
}

func TestFromDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nHOST=example.com\nPORT=8080\nQUOTED=\"hello world\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	got, err := FromDotenvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "example.com", got["HOST"])
	assert.Equal(t, "8080", got["PORT"])
	assert.Equal(t, "hello world", got["QUOTED"])
}

func TestFromDotenvFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.env")
	_, err := FromDotenvFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoad(t *testing.T) {
	t.Run("conflicting sources", func(t *testing.T) {
		_, err := Load(Source{EnvFile: "x.env", EnvVars: "A=1"})
		require.ErrorIs(t, err, ErrConflictingSources)
	})

	t.Run("inline pairs", func(t *testing.T) {
		got, err := Load(Source{EnvVars: "A=1"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"A": "1"}, got)
	})

	t.Run("process environment", func(t *testing.T) {
		t.Setenv("KSUBST_VARS_TEST", "from-env")
		got, err := Load(Source{})
		require.NoError(t, err)
		assert.Equal(t, "from-env", got["KSUBST_VARS_TEST"])
	})
}
