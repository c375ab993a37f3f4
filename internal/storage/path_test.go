package storage

import (
	"testing"
	"time"
)

func TestBuildArchivePath(t *testing.T) {
	ts := time.Date(2026, time.February, 19, 4, 5, 0, 0, time.FixedZone("x", -5*3600))
	key, err := BuildArchivePath("results", ts, "1771492500000000000-a1b2c3d4", "parquet")
	if err != nil {
		t.Fatalf("BuildArchivePath() error = %v", err)
	}
	want := "results/2026/02/19/1771492500000000000-a1b2c3d4.parquet"
	if key != want {
		t.Fatalf("BuildArchivePath() = %q, want %q", key, want)
	}
}

func TestBuildArchivePathAllowsNestedPrefix(t *testing.T) {
	ts := time.Date(2026, time.February, 19, 12, 0, 0, 0, time.UTC)
	key, err := BuildArchivePath("archive/results", ts, "snap", "parquet")
	if err != nil {
		t.Fatalf("BuildArchivePath() error = %v", err)
	}
	want := "archive/results/2026/02/19/snap.parquet"
	if key != want {
		t.Fatalf("BuildArchivePath() = %q, want %q", key, want)
	}
}

func TestBuildArchivePathUsesUTCDate(t *testing.T) {
	ts := time.Date(2026, time.March, 1, 1, 0, 0, 0, time.FixedZone("x", 3*3600))
	key, err := BuildArchivePath("results", ts, "snap", "json")
	if err != nil {
		t.Fatalf("BuildArchivePath() error = %v", err)
	}
	want := "results/2026/02/28/snap.json"
	if key != want {
		t.Fatalf("BuildArchivePath() = %q, want %q", key, want)
	}
}

func TestBuildArchivePathRejectsInvalidComponent(t *testing.T) {
	_, err := BuildArchivePath("../oops", time.Now(), "snap", "parquet")
	if err == nil {
		t.Fatal("expected invalid component error")
	}
	_, err = BuildArchivePath("archive//results", time.Now(), "snap", "parquet")
	if err == nil {
		t.Fatal("expected invalid component error")
	}
	_, err = BuildArchivePath("results", time.Now(), "snap/../../etc", "parquet")
	if err == nil {
		t.Fatal("expected invalid component error")
	}
}
