package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/uptrace/bun/driver/pgdriver"
)

// SQLSTATE codes we branch on.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
)

// Kind is a coarse classification of a storage error.
type Kind int

const (
	KindNone Kind = iota
	KindUnique
	KindForeignKey
	KindCheck
	KindIntegrity
	KindUnavailable
	KindOther
)

// Classify maps driver and connection errors onto a Kind so services can
// translate them into their own error vocabulary.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch code := pgErr.Field('C'); {
		case code == codeUniqueViolation:
			return KindUnique
		case code == codeForeignKeyViolation:
			return KindForeignKey
		case code == codeCheckViolation:
			return KindCheck
		case code == codeSerialization, code == codeDeadlock:
			return KindUnavailable
		case pgErr.IntegrityViolation():
			return KindIntegrity
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
			// connection exception, operator intervention
			return KindUnavailable
		}
		return KindOther
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, sql.ErrTxDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindUnavailable
	}

	return KindOther
}

// Constraint returns the violated constraint name, if the error carries one.
func Constraint(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('n')
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return Classify(err) == KindUnique
}

func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
