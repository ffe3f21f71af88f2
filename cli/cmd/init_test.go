package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "config.yaml")

	if _, err := executeIn(t, dir, "", nil, "--max-depth=7", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "max-depth: 7") {
		t.Errorf("config missing max-depth:\n%s", data)
	}

	if strings.Contains(string(data), "source") {
		t.Errorf("config contains empty flag:\n%s", data)
	}

	_, err = executeIn(t, dir, "", nil, "init")
	if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, ErrFileExists) {
		t.Fatalf("second init error = %v, want ErrFileExists", err)
	}

	if _, err := executeIn(t, dir, "", nil, "--max-depth=9", "init", "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}

	data, err = os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "max-depth: 9") {
		t.Errorf("config not overwritten:\n%s", data)
	}
}
