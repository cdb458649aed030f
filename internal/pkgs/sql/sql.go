// Package sql implements the `sql` built-in module: opening a
// database/sql handle against one of four drivers and running
// query/exec/close against it. Grounded on the teacher's
// internal/database (DBConnection lifecycle) and internal/stdlib's
// database_funcs.go (db_connect/db_query/db_execute/db_close), trimmed
// from its security-scanning surface down to the plain CRUD operations
// spec.md's external-interface model calls for: a Handle wrapping a live
// connection plus named operations dispatched through it.
package sql

import (
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"smile/internal/builtin"
	"smile/internal/symbol"
	"smile/internal/value"
	"smile/internal/vm"
)

// driverName maps the spec-facing engine name to the Go driver name
// registered by the blank imports above.
var driverName = map[string]string{
	"sqlite":   "sqlite3",
	"mysql":    "mysql",
	"postgres": "postgres",
	"mssql":    "sqlserver",
}

func Install(v *vm.VM, symbols *symbol.Table) map[string]value.Value {
	fns := map[string]func(args []value.Value) (value.Value, error){
		"sql.open":  sqlOpen,
		"sql.query": sqlQuery,
		"sql.exec":  sqlExec,
		"sql.close": sqlClose,
	}
	out := make(map[string]value.Value, len(fns))
	for name, fn := range fns {
		builtin.SetupFunction(v, symbols, name, 0, -1, fn)
		val, _ := v.GetGlobal(symbols.GetSymbol(name))
		out[name] = val
	}
	return out
}

func asString(v value.Value) (string, bool) {
	if v.Kind != value.KString {
		return "", false
	}
	return v.ToString(), true
}

// sql.open(engine, dsn) -> Handle. engine is one of "sqlite", "mysql",
// "postgres", "mssql".
func sqlOpen(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, fmt.Errorf("sql.open expects (engine, dsn)")
	}
	engine, ok := asString(args[0])
	if !ok {
		return value.Null, fmt.Errorf("sql.open: engine must be a string")
	}
	dsn, ok := asString(args[1])
	if !ok {
		return value.Null, fmt.Errorf("sql.open: dsn must be a string")
	}
	driver, ok := driverName[engine]
	if !ok {
		return value.Null, fmt.Errorf("sql.open: unknown engine %q", engine)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return value.Null, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return value.Null, err
	}

	return value.NewHandle("sql."+engine, db, map[string]func([]value.Value) (value.Value, error){
		"ping": func([]value.Value) (value.Value, error) { return value.Bool(db.Ping() == nil), nil },
	}, db.Close), nil
}

func handleDB(v value.Value) (*sql.DB, error) {
	if v.Kind != value.KHandle {
		return nil, fmt.Errorf("expected a sql handle")
	}
	h, ok := v.Obj.(*value.Handle)
	if !ok {
		return nil, fmt.Errorf("expected a sql handle")
	}
	db, ok := h.Resource.(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("handle is not a sql connection")
	}
	return db, nil
}

func toSQLArg(v value.Value) interface{} {
	switch v.Kind {
	case value.KString:
		return v.ToString()
	case value.KInt64, value.KInt32, value.KInt16, value.KByte, value.KSymbol:
		return v.AsInt64()
	case value.KFloat64, value.KReal64:
		return v.AsFloat64()
	case value.KBool:
		return v.AsBool()
	case value.KNull:
		return nil
	default:
		return v.ToString()
	}
}

// sql.query(handle, statement, args...) -> List of UserObjects, one per
// result row, column names as property names.
func sqlQuery(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.Null, fmt.Errorf("sql.query expects (handle, statement, ...args)")
	}
	db, err := handleDB(args[0])
	if err != nil {
		return value.Null, err
	}
	stmt, ok := asString(args[1])
	if !ok {
		return value.Null, fmt.Errorf("sql.query: statement must be a string")
	}
	params := make([]interface{}, len(args)-2)
	for i, a := range args[2:] {
		params[i] = toSQLArg(a)
	}

	rows, err := db.Query(stmt, params...)
	if err != nil {
		return value.Null, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return value.Null, err
	}

	var out []value.Value
	for rows.Next() {
		scanTargets := make([]interface{}, len(cols))
		values := make([]interface{}, len(cols))
		for i := range scanTargets {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return value.Null, err
		}
		row := value.NewUserObject("row", value.Null)
		for i, col := range cols {
			row.SetProperty(col, fromSQLValue(values[i]))
		}
		out = append(out, value.Value{Kind: value.KUserObject, Obj: row})
	}
	return value.ListFromSlice(out), rows.Err()
}

func fromSQLValue(v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null
	case []byte:
		return value.NewString(string(t))
	case string:
		return value.NewString(t)
	case int64:
		return value.Int64(t)
	case float64:
		return value.Float64(t)
	case bool:
		return value.Bool(t)
	default:
		return value.NewString(fmt.Sprintf("%v", t))
	}
}

// sql.exec(handle, statement, args...) -> Int64 (rows affected).
func sqlExec(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.Null, fmt.Errorf("sql.exec expects (handle, statement, ...args)")
	}
	db, err := handleDB(args[0])
	if err != nil {
		return value.Null, err
	}
	stmt, ok := asString(args[1])
	if !ok {
		return value.Null, fmt.Errorf("sql.exec: statement must be a string")
	}
	params := make([]interface{}, len(args)-2)
	for i, a := range args[2:] {
		params[i] = toSQLArg(a)
	}

	res, err := db.Exec(stmt, params...)
	if err != nil {
		return value.Null, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return value.Null, err
	}
	return value.Int64(affected), nil
}

// sql.close(handle) -> Null.
func sqlClose(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, fmt.Errorf("sql.close expects a handle")
	}
	if args[0].Kind != value.KHandle {
		return value.Null, fmt.Errorf("sql.close: not a handle")
	}
	h := args[0].Obj.(*value.Handle)
	return value.Null, h.Close()
}
