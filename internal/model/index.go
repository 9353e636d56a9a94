package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DayKeyFormat is the calendar-date key an index covers, in local time.
const DayKeyFormat = "2006-01-02"

func DayKeyOf(t time.Time) string {
	return t.Format(DayKeyFormat)
}

// NotificationIndex is the day's ground truth: every notification currently
// scheduled with the platform, keyed by identity.
type NotificationIndex struct {
	OwnerID uuid.UUID
	DayKey  string
	Entries map[int64]*ScheduledNotification
}

func NewNotificationIndex(ownerID uuid.UUID, dayKey string) *NotificationIndex {
	return &NotificationIndex{
		OwnerID: ownerID,
		DayKey:  dayKey,
		Entries: make(map[int64]*ScheduledNotification),
	}
}

// All returns the entries ordered by identity so serialization and diffing
// are deterministic.
func (i *NotificationIndex) All() []*ScheduledNotification {
	out := make([]*ScheduledNotification, 0, len(i.Entries))
	for _, e := range i.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Identity < out[b].Identity })
	return out
}

// Marshal serializes the entry set in canonical (identity-ordered) form.
func (i *NotificationIndex) Marshal() ([]byte, error) {
	return json.Marshal(i.All())
}

// Checksum is the integrity digest over the canonical serialization. A
// persisted record whose stored checksum disagrees with the recomputed one
// is corrupt and must be discarded, not trusted.
func Checksum(entries []byte) string {
	sum := sha256.Sum256(entries)
	return hex.EncodeToString(sum[:])
}

// IndexRecord is the persisted form of a NotificationIndex.
type IndexRecord struct {
	OwnerID   uuid.UUID `db:"owner_id"`
	DayKey    string    `db:"day_key"`
	Entries   []byte    `db:"entries"`
	Checksum  string    `db:"checksum"`
	UpdatedAt time.Time `db:"updated_at"`
}
