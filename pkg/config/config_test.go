package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Listen != "0.0.0.0:5051" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.InitialPoints != 100 || cfg.StatLimit != 65535 {
		t.Errorf("points = %d/%d, want 100/65535", cfg.InitialPoints, cfg.StatLimit)
	}
	if cfg.CmdPrefix != "!" {
		t.Errorf("CmdPrefix = %q, want %q", cfg.CmdPrefix, "!")
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lurkd.yaml")
	data := `
listen: "127.0.0.1:6000"
map_path: "/maps/world.json"
description_path: "/maps/desc.txt"
initial_points: 150
major_rev: 1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("INITIAL_POINTS", "200")
	t.Setenv("CMD_PREFIX", "/")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Listen != "127.0.0.1:6000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.MapPath != "/maps/world.json" {
		t.Errorf("MapPath = %q", cfg.MapPath)
	}
	if cfg.InitialPoints != 200 {
		t.Errorf("InitialPoints = %d, want env override 200", cfg.InitialPoints)
	}
	if cfg.MajorRev != 1 {
		t.Errorf("MajorRev = %d, want 1", cfg.MajorRev)
	}
	if cfg.CmdPrefix != "/" {
		t.Errorf("CmdPrefix = %q, want %q", cfg.CmdPrefix, "/")
	}
}

func TestValidateRequiresPaths(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing paths")
	}

	cfg.MapPath = "/maps/world.json"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing description path")
	}

	cfg.DescriptionPath = "/maps/desc.txt"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoadBadEnvValue(t *testing.T) {
	t.Setenv("STAT_LIMIT", "not-a-number")
	t.Setenv("MAP_FILEPATH", "/maps/world.json")
	t.Setenv("DESC_FILEPATH", "/maps/desc.txt")

	if _, err := Load(""); err == nil {
		t.Error("Load() = nil, want parse error for STAT_LIMIT")
	}
}
