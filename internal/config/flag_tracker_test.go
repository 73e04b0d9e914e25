package config

import (
	"sync"
	"testing"

	"github.com/spf13/pflag"
)

func TestFlagTracker_Basic(t *testing.T) {
	ft := NewFlagTracker()

	if ft.WasSet("threshold") {
		t.Error("Expected flag 'threshold' to not be set initially")
	}

	ft.Set("threshold")
	if !ft.WasSet("threshold") {
		t.Error("Expected flag 'threshold' to be set after Set()")
	}

	if ft.Count() != 1 {
		t.Errorf("Expected count to be 1, got %d", ft.Count())
	}
}

func TestFlagTracker_NilTracker(t *testing.T) {
	var ft *FlagTracker
	if ft.WasSet("threshold") {
		t.Error("Expected nil tracker to report nothing as set")
	}
	if got := ft.MergeInt(1, 2, "threshold"); got != 1 {
		t.Errorf("Expected nil tracker to keep base value, got %d", got)
	}
}

func TestNewFlagTrackerFromFlagSet(t *testing.T) {
	fs := pflag.NewFlagSet("query", pflag.ContinueOnError)
	fs.Float64(FlagThreshold, 0.5, "")
	fs.Int(FlagNumHashes, 128, "")
	fs.Bool(FlagRecursive, true, "")

	if err := fs.Parse([]string{"--threshold", "0.8", "--recursive=true"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	ft := NewFlagTrackerFromFlagSet(fs)
	if !ft.WasSet(FlagThreshold) {
		t.Error("Expected threshold to be tracked")
	}
	// Setting a flag to its default value still counts as explicit
	if !ft.WasSet(FlagRecursive) {
		t.Error("Expected recursive to be tracked")
	}
	if ft.WasSet(FlagNumHashes) {
		t.Error("Expected num-hashes to be untracked")
	}
	if ft.Count() != 2 {
		t.Errorf("Expected 2 tracked flags, got %d", ft.Count())
	}

	if NewFlagTrackerFromFlagSet(nil).Count() != 0 {
		t.Error("Expected empty tracker for nil flag set")
	}
}

func TestFlagTracker_GetAll(t *testing.T) {
	ft := NewFlagTracker()
	ft.Set("flag1")
	ft.Set("flag2")

	all := ft.GetAll()
	if len(all) != 2 {
		t.Errorf("Expected 2 flags, got %d", len(all))
	}

	// Modify the returned map and ensure it doesn't affect the tracker
	all["flag3"] = true
	if ft.WasSet("flag3") {
		t.Error("Modifying returned map should not affect tracker")
	}
}

func TestFlagTracker_ConcurrentReadWrite(t *testing.T) {
	ft := NewFlagTracker()
	var wg sync.WaitGroup
	iterations := 1000
	goroutines := 10

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				if j%2 == 0 {
					ft.Set("even")
				} else {
					ft.Set("odd")
				}
			}
		}()
	}

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				_ = ft.WasSet("even")
				_ = ft.Count()
				_ = ft.GetAll()
			}
		}()
	}

	wg.Wait()
	if ft.Count() != 2 {
		t.Errorf("Expected 2 flags, got %d", ft.Count())
	}
}

func TestFlagTracker_MergeMethods(t *testing.T) {
	ft := NewFlagTracker()
	ft.Set("explicit")

	if got := ft.MergeString("base", "override", "explicit"); got != "override" {
		t.Errorf("MergeString with explicit flag: expected 'override', got '%s'", got)
	}
	if got := ft.MergeString("base", "override", "notset"); got != "base" {
		t.Errorf("MergeString without explicit flag: expected 'base', got '%s'", got)
	}

	if got := ft.MergeInt(10, 20, "explicit"); got != 20 {
		t.Errorf("MergeInt with explicit flag: expected 20, got %d", got)
	}

	if got := ft.MergeBool(true, false, "explicit"); got {
		t.Error("MergeBool with explicit flag: expected false, got true")
	}

	if got := ft.MergeFloat64(0.5, 0.9, "notset"); got != 0.5 {
		t.Errorf("MergeFloat64 without explicit flag: expected 0.5, got %f", got)
	}

	if got := ft.MergeStringSlice([]string{"a"}, []string{"b"}, "explicit"); len(got) != 1 || got[0] != "b" {
		t.Errorf("MergeStringSlice with explicit flag: expected ['b'], got %v", got)
	}
	// An explicit but empty slice keeps the base value
	if got := ft.MergeStringSlice([]string{"a"}, nil, "explicit"); len(got) != 1 || got[0] != "a" {
		t.Errorf("MergeStringSlice with empty override: expected ['a'], got %v", got)
	}
}

func BenchmarkFlagTracker_WasSet(b *testing.B) {
	ft := NewFlagTracker()
	ft.Set(FlagThreshold)
	ft.Set(FlagNumBands)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = ft.WasSet(FlagNumBands)
		}
	})
}
