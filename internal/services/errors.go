package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	sqliteUniqueColumn = regexp.MustCompile(`UNIQUE constraint failed: \w+\.(\w+)`)
	mysqlUniqueKey     = regexp.MustCompile(`for key '(?:\w+\.)?(\w+)'`)
)

// isUniqueConstraintError detects uniqueness violations across vendors.
// Foreign key and check violations are not matched.
func isUniqueConstraintError(err error) bool {
	_, ok := uniqueViolation(err)
	return ok
}

// uniqueViolation reports whether err is a uniqueness violation and, when the
// driver exposes it, the offending column or index name.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		if pgErr.Code != "23505" {
			return "", false
		}
		return pgErr.ConstraintName, true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil {
		if myErr.Number != 1062 {
			return "", false
		}
		if m := mysqlUniqueKey.FindStringSubmatch(myErr.Message); m != nil {
			return m[1], true
		}
		return "", true
	}

	if m := sqliteUniqueColumn.FindStringSubmatch(err.Error()); m != nil {
		return m[1], true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	lower := strings.ToLower(err.Error())
	return "", strings.Contains(lower, "unique constraint") || strings.Contains(lower, "duplicate key") || strings.Contains(lower, "duplicate entry")
}
