package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uuidArray converts a uuid slice to a driver value for UUID[] columns
func uuidArray(ids []uuid.UUID) interface{} {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}

// parseUUIDs converts scanned UUID[] text values back to uuid slices
func parseUUIDs(strs pq.StringArray) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(strs))
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid in array: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
