package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"puspa_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlSchema = `
groups:
  - group_key: kehamilan
    title: Riwayat Kehamilan
    questions:
      - id: 435
        question_text: Kehamilan direncanakan?
        answer_type: radio
        answer_options: '["Ya","Tidak"]'
      - id: 436
        question_text: Jelaskan
        answer_type: text
        extra_schema:
          conditional_rules:
            - when: "435"
              operator: "=="
              value: Tidak
`

const brokenSchema = `{"data":{"groups":[{"group_key":"g","title":"G","questions":[
	{"id":1,"answer_type":"hologram"},
	{"id":2,"answer_type":"text","extra_schema":{"conditional_rules":[{"when":"Q-404","value":"Ya"}]}},
	{"id":3,"answer_type":"select","answer_options":"['a', 'b'"}
]}]}}`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReadSchemaFileYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "okupasi.yaml", yamlSchema)
	raw, err := readSchemaFile(path)
	require.NoError(t, err)
	require.Len(t, raw.Groups, 1)
	assert.Len(t, raw.Groups[0].Questions, 2)
	assert.Equal(t, 436, raw.Groups[0].Questions[1].ID)
}

func TestSchemaCheckClean(t *testing.T) {
	path := writeFile(t, t.TempDir(), "general.yml", yamlSchema)
	out, err := run(t, "schema", "check", "--category", "parent_general", path)
	require.NoError(t, err)
	assert.Contains(t, out, "identitas")
	assert.Contains(t, out, "kehamilan")
	assert.Contains(t, out, "2 group(s), 2 question(s)")
}

func TestSchemaCheckReportsProblems(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", brokenSchema)
	out, err := run(t, "schema", "check", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 problem(s)")
	assert.Contains(t, out, `unknown answer type  1: "hologram"`)
	assert.Contains(t, out, `unresolved rule      2: when="Q-404"`)
	assert.Contains(t, out, `malformed fragment   3 answer_options: suggest ["a",`)
	assert.Contains(t, out, "1 decode warning(s)")
}

func TestSchemaCheckUnknownCategory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "general.yaml", yamlSchema)
	_, err := run(t, "schema", "check", "--category", "nope", path)
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "jwt:\n  secret: cli-test-secret\nbackend:\n  mode: local\n")

	out, err := run(t, "--config", dir, "token", "--user", "9", "--role", "admin")
	require.NoError(t, err)

	claims, err := util.ParseJWT(strings.TrimSpace(out), "cli-test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenCommandRefusedInRelease(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server:\n  mode: release\njwt:\n  secret: 0123456789abcdef0123456789abcdef\nbackend:\n  mode: local\n")

	_, err := run(t, "--config", dir, "token")
	assert.Error(t, err)
}

func TestSchemaImportRequiresLocalBackend(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "backend:\n  mode: remote\n  base_url: http://clinic\n")
	path := writeFile(t, dir, "s.yaml", yamlSchema)

	_, err := run(t, "--config", dir, "schema", "import", "parent_general", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.mode=local")
}
