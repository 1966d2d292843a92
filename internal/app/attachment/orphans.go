package attachment

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// avatarPrefix holds profile pictures, which no attachment row references.
const avatarPrefix = "avatar/"

// StoredObject is a blob as listed from the bucket.
type StoredObject struct {
	Name         string
	LastModified time.Time
}

// ReferencedObjects lists the object names recorded in task_attachments.
func ReferencedObjects(ctx context.Context, db *gorm.DB) ([]string, error) {
	var names []string
	err := db.WithContext(ctx).Model(&Attachment{}).Pluck("object_name", &names).Error
	return names, err
}

// FindOrphans returns the names of stored objects that no attachment
// references, sorted. Avatars are never reported, nor are objects modified
// after cutoff: task images are uploaded before their row is inserted.
func FindOrphans(stored []StoredObject, referenced []string, cutoff time.Time) []string {
	known := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		known[name] = struct{}{}
	}
	var orphans []string
	for _, object := range stored {
		if strings.HasPrefix(object.Name, avatarPrefix) || object.LastModified.After(cutoff) {
			continue
		}
		if _, ok := known[object.Name]; !ok {
			orphans = append(orphans, object.Name)
		}
	}
	sort.Strings(orphans)
	return orphans
}
