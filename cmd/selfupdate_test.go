package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewSelfUpdateCmd(t *testing.T) {
	selfUpdateCmd := newSelfUpdateCmd()

	if selfUpdateCmd.Use != "self-update" {
		t.Errorf("Expected Use to be 'self-update', got %s", selfUpdateCmd.Use)
	}
	if selfUpdateCmd.Short == "" || selfUpdateCmd.Long == "" {
		t.Error("Expected Short and Long descriptions to be set")
	}
	if selfUpdateCmd.RunE == nil {
		t.Error("Expected RunE function to be set")
	}
	if err := selfUpdateCmd.Args(selfUpdateCmd, []string{"extra"}); err == nil {
		t.Error("Expected self-update to reject arguments")
	}
}

func TestRunSelfUpdateRefusesDevelopmentBuilds(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	for _, version := range []string{"dev", ""} {
		t.Run("version="+version, func(t *testing.T) {
			rootCmd.Version = version

			// Fails before any network access.
			err := runSelfUpdate(nil, nil)
			if err == nil {
				t.Fatal("Expected an error for a development build")
			}
			if !strings.Contains(err.Error(), "cannot self-update a development version") {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSelfUpdateCommandHelp(t *testing.T) {
	selfUpdateCmd := newSelfUpdateCmd()
	var buf bytes.Buffer
	selfUpdateCmd.SetOut(&buf)
	selfUpdateCmd.SetErr(&buf)
	selfUpdateCmd.SetArgs([]string{"--help"})

	if err := selfUpdateCmd.Execute(); err != nil {
		t.Fatalf("Error executing self-update help: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"self-update", "Checks for the latest release of servctl"} {
		if !strings.Contains(output, want) {
			t.Errorf("Help output should contain %q. Got: %q", want, output)
		}
	}
}

func TestGithubRepoSlug(t *testing.T) {
	owner, repo, ok := strings.Cut(githubRepoSlug, "/")
	if !ok || owner == "" || repo != "servctl" {
		t.Errorf("Expected an owner/servctl slug, got %s", githubRepoSlug)
	}
}
