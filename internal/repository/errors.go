package repository

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// isUniqueViolation recognizes duplicate-key failures from gorm's translated
// errors, lib/pq and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern with wildcards escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// tagPattern matches one element of a tags column written by gorm's json
// serializer, which stores strings the way encoding/json marshals them
// (HTML characters escaped as \u0026 and friends).
func tagPattern(tag string) string {
	encoded, err := json.Marshal(tag)
	if err != nil {
		encoded = []byte(`"` + tag + `"`)
	}
	return "%" + likeEscaper.Replace(string(encoded)) + "%"
}

func prefixPattern(s string) string {
	return likeEscaper.Replace(strings.ToLower(s)) + "%"
}
