package idhash

import (
	"testing"
	"time"
)

func TestComputeRunID(t *testing.T) {
	asOf := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		digest  string
		asOf    time.Time
		wantLen int // hash length should be 64
	}{
		{name: "typical", digest: "9f86d081884c7d65", asOf: asOf, wantLen: 64},
		{name: "empty digest", digest: "", asOf: asOf, wantLen: 64},
		{name: "zero time", digest: "abc", asOf: time.Time{}, wantLen: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRunID(tt.digest, tt.asOf)
			if len(got) != tt.wantLen {
				t.Errorf("ComputeRunID() length = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestComputeRunID_Deterministic(t *testing.T) {
	asOf := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	id1 := ComputeRunID("digest", asOf)
	id2 := ComputeRunID("digest", asOf)
	if id1 != id2 {
		t.Errorf("ComputeRunID not deterministic: %s != %s", id1, id2)
	}

	// same instant in another zone is the same run
	id3 := ComputeRunID("digest", asOf.In(time.FixedZone("UTC+3", 3*3600)))
	if id1 != id3 {
		t.Errorf("ComputeRunID depends on time zone: %s != %s", id1, id3)
	}
}

func TestComputeRunID_Unique(t *testing.T) {
	asOf := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	ids := map[string]string{
		"base":        ComputeRunID("digest", asOf),
		"other input": ComputeRunID("digest2", asOf),
		"next day":    ComputeRunID("digest", asOf.Add(24*time.Hour)),
	}

	seen := make(map[string]string)
	for name, id := range ids {
		if prev, ok := seen[id]; ok {
			t.Errorf("collision between %q and %q", prev, name)
		}
		seen[id] = name
	}
}
