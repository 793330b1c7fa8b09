package pos

import "github.com/google/uuid"

// ToV1 turns a shop UUID into the version 1 form iZettle accepts.
// Only the version nibble and the variant bits change.
func ToV1(id uuid.UUID) uuid.UUID {
	id[6] = (id[6] & 0x0f) | 0x10
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// ToV4 reverses ToV1 for UUIDs that were version 4 originally
func ToV4(id uuid.UUID) uuid.UUID {
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// IncrementUUID adds one to the 128 bit value of id
func IncrementUUID(id uuid.UUID) uuid.UUID {
	for i := len(id) - 1; i >= 0; i-- {
		id[i]++
		if id[i] != 0 {
			break
		}
	}
	return id
}

// ParseRemoteUUID parses a UUID reported by iZettle and converts it back to a shop UUID
func ParseRemoteUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, err
	}
	return ToV4(id), nil
}
