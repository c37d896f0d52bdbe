package ids

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
)

// Parse converts a hex object id, reporting the offending field on failure.
func Parse(field, raw string) (primitive.ObjectID, error) {
	value := strings.TrimSpace(raw)
	oid, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidInput(field, "invalid "+field+": "+value)
	}
	return oid, nil
}
