package attachment

import (
	"reflect"
	"testing"
	"time"
)

func TestFindOrphans(t *testing.T) {
	cutoff := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	old := cutoff.Add(-time.Hour)
	stored := []StoredObject{
		{Name: "u1/b.png", LastModified: old},
		{Name: "avatar/u1/me.png", LastModified: old},
		{Name: "u1/a.png", LastModified: old},
		{Name: "u2/c.png", LastModified: cutoff},
	}
	referenced := []string{"u1/b.png", "u9/gone.png"}

	got := FindOrphans(stored, referenced, cutoff)
	if want := []string{"u1/a.png", "u2/c.png"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected orphans: %v", got)
	}
	if got := FindOrphans(nil, referenced, cutoff); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestFindOrphansSkipsRecentUploads(t *testing.T) {
	cutoff := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stored := []StoredObject{
		{Name: "u1/uploading.png", LastModified: cutoff.Add(time.Second)},
		{Name: "u1/stale.png", LastModified: cutoff.Add(-24 * time.Hour)},
	}

	got := FindOrphans(stored, nil, cutoff)
	if want := []string{"u1/stale.png"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("an upload newer than the cutoff must not be reported, got %v", got)
	}
}
