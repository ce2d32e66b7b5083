package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"lyricindex/internal/config"
	"lyricindex/internal/testsupport"
)

const groundTruthCSV = "Album,Song Title,Track Number\n" +
	"Activate,Intro,1\n" +
	"Ready or Not,Lose Your Mind,6\n" +
	"You're It!,The Road,3\n" +
	"Domesticated,Ticket to Ride,4\n"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("LYRICINDEX_ARTIST", "")
	t.Setenv("LYRICINDEX_USER_AGENT", "")
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithGroundTruth(groundTruthCSV)}, opts...)...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	env := &cliTestEnv{cfg: cfg, configPath: filepath.Join(base, "config.toml"), baseDir: base}
	env.writeConfig(t)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	testsupport.WriteConfig(t, e.configPath, e.cfg)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	testsupport.WriteFile(t, path, content)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
