// Package identity derives stable notification identifiers from semantic
// keys. The platform addresses notifications by integer id; deriving the id
// from the key is what makes cancel-then-recreate idempotent.
package identity

import (
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/carebuddy/reminder-engine/internal/model"
)

// Field separator. Keys are variable-length strings, so fields must be
// delimited unambiguously before hashing.
const sep = 0x1f

// Derive computes the 63-bit identity for one notification instance. Pure
// and total: any combination of inputs, including empty optional fields,
// yields a value, and the same inputs always yield the same value across
// process restarts.
func Derive(ownerID, subjectID uuid.UUID, scheduleRef *uuid.UUID, slotTime string, kind model.NotificationKind) int64 {
	h := fnv.New64a()

	h.Write(ownerID[:])
	h.Write([]byte{sep})
	h.Write(subjectID[:])
	h.Write([]byte{sep})
	if scheduleRef != nil {
		h.Write(scheduleRef[:])
	}
	h.Write([]byte{sep})
	h.Write([]byte(slotTime))
	h.Write([]byte{sep})
	h.Write([]byte(kind))

	// Mask to 63 bits: platform notification ids must be non-negative.
	return int64(h.Sum64() & 0x7fffffffffffffff)
}
