package s3store

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestCollectSnapshotsDropsIncompleteEntries(t *testing.T) {
	now := time.Now()
	contents := []types.Object{
		{Key: aws.String("backups/a.dump"), Size: aws.Int64(10), LastModified: &now},
		{Key: aws.String("backups/no-size.dump"), LastModified: &now},
		{Key: aws.String("backups/no-time.dump"), Size: aws.Int64(20)},
		{Size: aws.Int64(30), LastModified: &now},
	}

	got := collectSnapshots(contents)
	if len(got) != 1 {
		t.Fatalf("collectSnapshots() kept %d entries, want 1", len(got))
	}
	if got[0].Key != "backups/a.dump" {
		t.Errorf("kept entry = %q, want %q", got[0].Key, "backups/a.dump")
	}
}

func TestCollectSnapshotsSortsNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := base
	mid := base.Add(24 * time.Hour)
	recent := base.Add(48 * time.Hour)

	contents := []types.Object{
		{Key: aws.String("old.dump"), Size: aws.Int64(1), LastModified: &old},
		{Key: aws.String("recent.dump"), Size: aws.Int64(1), LastModified: &recent},
		{Key: aws.String("mid.dump"), Size: aws.Int64(1), LastModified: &mid},
	}

	got := collectSnapshots(contents)
	want := []string{"recent.dump", "mid.dump", "old.dump"}
	for i, key := range want {
		if got[i].Key != key {
			t.Errorf("snapshot[%d] = %q, want %q", i, got[i].Key, key)
		}
	}
}
