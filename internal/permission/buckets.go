package permission

import (
	"fmt"
	"time"
)

// Usage ledger keys. Buckets are created lazily on first increment and age
// out with their calendar period; nothing deletes them explicitly.

func dailyBucket(permissionID string, t time.Time) string {
	return permissionID + ":" + t.Format("2006-01-02")
}

func weeklyBucket(permissionID string, t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%s:%04d-W%02d", permissionID, year, week)
}
