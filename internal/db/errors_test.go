package db_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"election-service/internal/db"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want db.Kind
	}{
		{"nil", nil, db.KindNone},
		{"bad conn", driver.ErrBadConn, db.KindUnavailable},
		{"wrapped bad conn", fmt.Errorf("insert vote: %w", driver.ErrBadConn), db.KindUnavailable},
		{"conn done", sql.ErrConnDone, db.KindUnavailable},
		{"tx done", sql.ErrTxDone, db.KindUnavailable},
		{"deadline", context.DeadlineExceeded, db.KindUnavailable},
		{"net op", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, db.KindUnavailable},
		{"no rows", sql.ErrNoRows, db.KindOther},
		{"plain", errors.New("boom"), db.KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, db.Classify(tt.err))
		})
	}
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, db.IsNoRows(fmt.Errorf("get voter: %w", sql.ErrNoRows)))
	assert.False(t, db.IsNoRows(errors.New("other")))
}
