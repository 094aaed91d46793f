package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richtext/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := Execute(BuildInfo{Version: "test"}, args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestReplay(t *testing.T) {
	input := writeFile(t, "in.txt", "abc\n")
	script := writeFile(t, "edit.lua", `
		local c = rt.cursor(1, 1, "after")
		rt.insert(1, 1, "XY")
		local _, off = c:pos()
		print("cursor", off)
	`)

	code, out, errOut := execute(t, "replay", "-i", input, script)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "cursor\t3\naXYbc\n", out)
}

func TestReplayStylesFromConfig(t *testing.T) {
	cfg := writeFile(t, "richtext.toml", "[styles.em]\nattrs = [\"italic\"]\n")
	script := writeFile(t, "style.lua", `
		rt.insert(1, 0, "hi", "em")
		print(rt.style_at(1, 0))
	`)

	code, out, errOut := execute(t, "--config", cfg, "replay", script)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "em\nhi\n", out)
}

func TestReplayFailure(t *testing.T) {
	script := writeFile(t, "bad.lua", `rt.erase(1, 0, 5)`)
	code, _, errOut := execute(t, "replay", script)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "offset out of range")

	code, _, errOut = execute(t, "replay", filepath.Join(t.TempDir(), "missing.lua"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "missing.lua")
}

func TestRender(t *testing.T) {
	file := writeFile(t, "doc.txt", "hello world\nab\n")

	code, out, errOut := execute(t, "render", "-w", "5", file)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "hello\n worl\nd\nab\n", out)

	code, out, errOut = execute(t, "render", "-w", "5", "--cursor", "1:11", file)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "cursor 1:11 at (1,2 1x1)\n")

	code, _, errOut = execute(t, "render", "--cursor", "3:0", file)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "cursor fragment 3")

	code, _, _ = execute(t, "render", "--cursor", "nope", file)
	assert.Equal(t, 1, code)
}

func TestRenderWrapWidthFromEnv(t *testing.T) {
	t.Setenv(config.EnvWrapWidth, "3")
	file := writeFile(t, "doc.txt", "abcdef")

	code, out, errOut := execute(t, "render", file)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "abc\ndef\n", out)
}

func TestBadConfig(t *testing.T) {
	cfg := writeFile(t, "bad.toml", "[text\n")
	code, _, errOut := execute(t, "--config", cfg, "render", cfg)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "parse error")

	code, _, errOut = execute(t, "--log-level", "loud", "render", cfg)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "log.level")
}
