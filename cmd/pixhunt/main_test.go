package main

import (
	"errors"
	"io"
	"testing"
)

func executeWithArgs(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestMissingRequiredParametersIsUsageError(t *testing.T) {
	err := executeWithArgs(t, "-d", "/evidence/usb.dd")
	var usageErr *usageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("err = %v, want usage error for missing -r", err)
	}

	err = executeWithArgs(t, "-r", "/case/refs")
	if !errors.As(err, &usageErr) {
		t.Fatalf("err = %v, want usage error for missing -d", err)
	}
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	err := executeWithArgs(t, "-d", "/evidence/usb.dd", "-x")
	var usageErr *usageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("err = %v, want usage error for unknown option", err)
	}
}

func TestMalformedThresholdIsUsageError(t *testing.T) {
	err := executeWithArgs(t, "-d", "img.dd", "-r", "refs", "-i", "ten")
	var usageErr *usageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("err = %v, want usage error for malformed -i value", err)
	}
}

func TestHelpFlagSucceeds(t *testing.T) {
	if err := executeWithArgs(t, "-h", "ignored"); err != nil {
		t.Fatalf("help should not error: %v", err)
	}
}
