/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// SQLError classifies driver errors independently of the dialect.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

var sqlErrorNames = map[SQLError]string{
	UnknownErr:                  "unknown",
	NoRowsErr:                   "no_rows",
	NoIndexErr:                  "no_index",
	NoColumnErr:                 "no_column",
	ExistIndexErr:               "index_exists",
	ExistColumnErr:              "column_exists",
	NoTableErr:                  "no_table",
	ExistTableErr:               "table_exists",
	DuplicateKeyErr:             "duplicate_key",
	NotNullViolationErr:         "not_null_violation",
	ForeignKeyViolationErr:      "foreign_key_violation",
	CheckConstraintViolationErr: "check_violation",
	DataTruncatedErr:            "data_truncated",
	InvalidTypeCastErr:          "invalid_type_cast",
}

func (e SQLError) String() string {
	if name, ok := sqlErrorNames[e]; ok {
		return name
	}
	return sqlErrorNames[UnknownErr]
}

// MySQL server error numbers.
var mysqlErrorClasses = map[uint16]SQLError{
	1048: NotNullViolationErr,
	1054: NoColumnErr,
	1060: ExistColumnErr,
	1061: ExistIndexErr,
	1062: DuplicateKeyErr,
	1091: NoIndexErr,
	1146: NoTableErr,
	1050: ExistTableErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1265: DataTruncatedErr,
	1406: DataTruncatedErr,
	3819: CheckConstraintViolationErr,
}

// PostgreSQL SQLSTATE codes.
var pgStateClasses = map[string]SQLError{
	"42703": NoColumnErr,
	"42701": ExistColumnErr,
	"42704": NoIndexErr,
	"42P01": NoTableErr,
	"42P07": ExistTableErr,
	"23505": DuplicateKeyErr,
	"23502": NotNullViolationErr,
	"23503": ForeignKeyViolationErr,
	"23514": CheckConstraintViolationErr,
	"22001": DataTruncatedErr,
	"42804": InvalidTypeCastErr,
}

// messageRule matches when every fragment occurs in the lowercased message.
type messageRule struct {
	class SQLError
	all   []string
}

// Rules for drivers without typed errors (SQLite) or wrapped messages.
// Order matters: index rules precede the generic "already exists" table rule.
var messageRules = []messageRule{
	{NoColumnErr, []string{"no such column"}},
	{NoColumnErr, []string{"undefined column"}},
	{NoIndexErr, []string{"no such index"}},
	{NoIndexErr, []string{"index", "does not exist"}},
	{NoTableErr, []string{"no such table"}},
	{NoTableErr, []string{"undefined table"}},
	{ExistIndexErr, []string{"index", "already exists"}},
	{ExistTableErr, []string{"table", "already exists"}},
	{ExistTableErr, []string{"relation", "already exists"}},
	{DuplicateKeyErr, []string{"unique constraint failed"}},
	{DuplicateKeyErr, []string{"duplicate key value"}},
	{NotNullViolationErr, []string{"not null constraint failed"}},
	{NotNullViolationErr, []string{"not-null constraint"}},
	{ForeignKeyViolationErr, []string{"foreign key constraint failed"}},
	{ForeignKeyViolationErr, []string{"foreign key violation"}},
	{CheckConstraintViolationErr, []string{"check constraint"}},
	{DataTruncatedErr, []string{"data truncated"}},
	{DataTruncatedErr, []string{"string data right truncation"}},
	{InvalidTypeCastErr, []string{"datatype mismatch"}},
}

// IsSqlError reports whether err is a recognized SQL error and its class.
// Typed MySQL and PostgreSQL errors are matched by code, anything else by
// message.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if class, ok := mysqlErrorClasses[mysqlErr.Number]; ok {
			return true, class
		}
		return true, UnknownErr
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if class, ok := pgStateClasses[string(pqErr.Code)]; ok {
			return true, class
		}
		return true, UnknownErr
	}

	msg := strings.ToLower(err.Error())
	if i := strings.Index(msg, "sqlstate "); i >= 0 && len(msg) >= i+14 {
		if class, ok := pgStateClasses[strings.ToUpper(msg[i+9:i+14])]; ok {
			return true, class
		}
	}
	for _, rule := range messageRules {
		if containsAll(msg, rule.all) {
			return true, rule.class
		}
	}
	return false, UnknownErr
}

func containsAll(s string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(s, f) {
			return false
		}
	}
	return true
}

// MySQL client and server errors that mean the server was never reached or
// dropped the session.
var mysqlConnectionErrors = map[uint16]bool{
	1040: true, // too many connections
	1045: true, // access denied
	1049: true, // unknown database
	2002: true,
	2003: true,
	2006: true, // server has gone away
	2013: true, // lost connection during query
}

var connectionMessages = []string{
	"connection refused",
	"database not connected",
	"sql: database is closed",
	"broken pipe",
	"sqlstate 08",
}

// IsConnectionError reports whether err means the store could not be reached
// or the connection broke, as opposed to a statement-level failure.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlConnectionErrors[mysqlErr.Number]
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "08" || pqErr.Code == "57P01"
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range connectionMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
