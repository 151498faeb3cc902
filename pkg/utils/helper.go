package utils

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ==================== OBJECT IDS ====================

func IsObjectIDHex(s string) bool {
	return primitive.IsValidObjectID(s)
}

// ParseObjectID parses a hex id, returning a validation error naming what was expected.
func ParseObjectID(s, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, ErrValidation("Invalid " + what + " id")
	}
	return id, nil
}

// ==================== SEARCH ====================

// CaseInsensitivePattern returns a regex literal matching s anywhere, metacharacters escaped.
func CaseInsensitivePattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(s)), Options: "i"}
}

// EmailLocalPart returns the part of an address before '@'.
func EmailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
