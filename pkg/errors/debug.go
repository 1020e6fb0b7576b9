package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-only view of an error chain. It is never written to
// a response.
type ErrorDump struct {
	TopMessage string
	Code       Code
	HTTPStatus int
	Chain      []string

	PGCode       string
	PGClass      string
	PGConstraint string
	PGTable      string
	PGColumn     string
	PGDetail     string
	PGMessage    string
}

// SQLSTATE classes the inventory schema can realistically raise.
var sqlStateClasses = map[string]string{
	"22": "data_exception",
	"23": "integrity_constraint_violation",
	"40": "transaction_rollback",
	"53": "insufficient_resources",
	"57": "operator_intervention",
	"08": "connection_exception",
}

// Dump walks err and pulls driver fields from pgx or lib/pq errors.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error(), Code: CodeOf(err)}
	d.HTTPStatus = MetadataFor(d.Code).HTTPStatus
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.setPG(pgxErr.Code, pgxErr.ConstraintName, pgxErr.TableName, pgxErr.ColumnName, pgxErr.Detail, pgxErr.Message)
	case errors.As(err, &pqErr):
		d.setPG(string(pqErr.Code), pqErr.Constraint, pqErr.Table, pqErr.Column, pqErr.Detail, pqErr.Message)
	}
	return d
}

func (d *ErrorDump) setPG(code, constraint, table, column, detail, message string) {
	d.PGCode = code
	d.PGConstraint = constraint
	d.PGTable = table
	d.PGColumn = column
	d.PGDetail = detail
	d.PGMessage = message
	if len(code) >= 2 {
		d.PGClass = sqlStateClasses[code[:2]]
	}
}

// Fields renders the dump as structured log fields, omitting empty driver data.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
		"http_status": d.HTTPStatus,
	}
	if d.PGCode == "" {
		return fields
	}
	for k, v := range map[string]string{
		"pg_code":       d.PGCode,
		"pg_class":      d.PGClass,
		"pg_constraint": d.PGConstraint,
		"pg_table":      d.PGTable,
		"pg_column":     d.PGColumn,
		"pg_detail":     d.PGDetail,
	} {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
