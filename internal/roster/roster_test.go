package roster

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/prdflow/pkg/assign"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "engineers.json", `[
		{"name": " Ada ", "role": "Backend Engineer", "skills": "Go, gRPC, PostgreSQL"},
		{"name": "Linus", "role": "Frontend Engineer", "skills": "React, CSS"}
	]`)

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, assign.Roster{
		{ID: "Ada", Role: "Backend Engineer", Skills: "Go, gRPC, PostgreSQL"},
		{ID: "Linus", Role: "Frontend Engineer", Skills: "React, CSS"},
	}, r)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "engineers.yaml", `- name: Grace
  role: SRE
  skills: Kubernetes, Terraform
- name: Ken
  skills: C, compilers
`)

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Grace", "Ken"}, r.IDs())
	assert.Equal(t, "", r[1].Role)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read engineer profiles")
	})

	t.Run("not a list", func(t *testing.T) {
		_, err := Load(writeFile(t, "e.json", `{"name": "x"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := Load(writeFile(t, "e.json", `[]`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, assign.ErrEmptyRoster))
	})

	t.Run("missing skills", func(t *testing.T) {
		_, err := Load(writeFile(t, "e.json", `[{"name": "x", "role": "dev"}]`))
		require.Error(t, err)
		assert.True(t, assign.IsValidationError(err))
	})
}

func TestRoleCounts(t *testing.T) {
	counts := RoleCounts(assign.Roster{
		{ID: "a", Role: "dev"},
		{ID: "b", Role: "dev"},
		{ID: "c"},
	})
	assert.Equal(t, map[string]int{"dev": 2, "unspecified": 1}, counts)
}
