package main

import (
	"testing"
)

// TestNewLookupCmd tests the lookup command creation.
func TestNewLookupCmd(t *testing.T) {
	t.Parallel()

	cmd := NewLookupCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "lookup <topic> <input>" {
			t.Errorf("expected use 'lookup <topic> <input>', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("requires exactly two arguments", func(t *testing.T) {
		t.Parallel()
		if cmd.Args == nil {
			t.Fatal("expected Args validator")
		}
		if err := cmd.Args(cmd, []string{"github"}); err == nil {
			t.Error("expected error with one argument")
		}
		if err := cmd.Args(cmd, []string{"github", "octocat"}); err != nil {
			t.Errorf("unexpected error with two arguments: %v", err)
		}
	})

	t.Run("has type flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("type") == nil {
			t.Error("expected type flag")
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has markdown flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("markdown")
		if flag == nil {
			t.Fatal("expected markdown flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has shared config flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"config", "timeout", "tor", "external-tor"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestRunLookupCmdRejectsBadInput tests argument validation before any
// network work happens.
func TestRunLookupCmdRejectsBadInput(t *testing.T) {
	t.Parallel()

	t.Run("unknown topic", func(t *testing.T) {
		t.Parallel()

		cmd := NewLookupCmd()
		cmd.SetArgs([]string{"notatopic", "whatever"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for unknown topic")
		}
	})

	t.Run("conflicting report formats", func(t *testing.T) {
		t.Parallel()

		cmd := NewLookupCmd()
		cmd.SetArgs([]string{"github", "octocat", "--json", "--markdown"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for conflicting report flags")
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewLookupCmd()
		cmd.SetArgs([]string{"github", "octocat", "-c", "/nonexistent/path.yaml"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
