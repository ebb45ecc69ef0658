// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between different failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrTicketNotFound is returned when no ticket has the requested id.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrBuyerNotFound is returned when no buyer has the requested id.
var ErrBuyerNotFound = errors.New("buyer not found")

// ErrAlreadySold is returned when a purchase targets a ticket whose sold
// flag is already set, or when the buyer insert loses the unique key race.
var ErrAlreadySold = errors.New("ticket already sold")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when registering a taken username.
var ErrUsernameExists = errors.New("username already exists")

// ErrSessionNotFound is returned when a user/token pair matches no session.
var ErrSessionNotFound = errors.New("session not found")

// ErrConfigNotFound is returned when the configuration row is missing.
var ErrConfigNotFound = errors.New("raffle config not found")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
