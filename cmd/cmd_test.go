package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

const feed = `[
  {"package": "demo", "nodes": [{"node": "talker", "publishers": ["chatter"]}, {"node": "listener", "subscribers": ["chatter"]}], "launch_files": []}
]`

const robot = `<launch>
  <node name="talker" pkg="demo" type="talker"/>
  <node name="listener" pkg="demo" type="listener"/>
</launch>
`

func TestCLI_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "rosgraph.hcl")
	out := filepath.Join(dir, "gen")
	require.NoError(t, os.WriteFile(conf, []byte(`
project = "`+filepath.ToSlash(filepath.Join(dir, "robot.json"))+`"
out_dir = "`+filepath.ToSlash(out)+`"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feed.json"), []byte(feed), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robot.launch"), []byte(robot), 0o644))

	stdout, err := run(t, "--config", conf, "init", "demo")
	require.NoError(t, err)
	assert.Contains(t, stdout, `Created project "demo"`)

	_, err = run(t, "--config", conf, "init")
	assert.Error(t, err, "init refuses to overwrite")

	_, err = run(t, "--config", conf, "library", "update", filepath.Join(dir, "feed.json"))
	require.NoError(t, err)
	_, err = run(t, "--config", conf, "import", filepath.Join(dir, "robot.launch"))
	require.NoError(t, err)
	_, err = run(t, "--config", conf, "connect")
	require.NoError(t, err)
	_, err = run(t, "--config", conf, "check")
	require.NoError(t, err)

	stdout, err = run(t, "--config", conf, "export")
	require.NoError(t, err)
	assert.Contains(t, stdout, "robot.launch")

	data, err := os.ReadFile(filepath.Join(out, "robot.launch"))
	require.NoError(t, err)
	assert.Equal(t, robot, string(data))
}

func TestCLI_MissingProject(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "rosgraph.hcl")
	require.NoError(t, os.WriteFile(conf, []byte(`project = "`+filepath.ToSlash(filepath.Join(dir, "none.db"))+`"`), 0o644))
	_, err := run(t, "--config", conf, "check")
	assert.Error(t, err)
}
