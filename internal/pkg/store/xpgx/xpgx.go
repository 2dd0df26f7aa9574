package xpgx

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool runs squirrel statements and scans rows into db-tagged structs.
type Pool interface {
	Execx(ctx context.Context, query sq.Sqlizer) (int64, error)
	Getx(ctx context.Context, dst interface{}, query sq.Sqlizer) error
	Selectx(ctx context.Context, dst interface{}, query sq.Sqlizer) error
}

type pool struct {
	*pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*pgxpool.Pool, Pool, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	return p, Wrap(p), nil
}

func Wrap(p *pgxpool.Pool) Pool {
	return &pool{p}
}

func (p *pool) Execx(ctx context.Context, query sq.Sqlizer) (int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("query.ToSql: %w", err)
	}

	tag, err := p.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *pool) Getx(ctx context.Context, dst interface{}, query sq.Sqlizer) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("xpgx.Getx: dst must be a pointer to struct, got %T", dst)
	}

	rows, err := p.query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return pgx.ErrNoRows
	}
	if err := scanStruct(rows, v.Elem()); err != nil {
		return err
	}

	return rows.Err()
}

func (p *pool) Selectx(ctx context.Context, dst interface{}, query sq.Sqlizer) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("xpgx.Selectx: dst must be a pointer to slice, got %T", dst)
	}

	slice := v.Elem()
	elemType := slice.Type().Elem()
	isPtr := elemType.Kind() == reflect.Pointer
	structType := elemType
	if isPtr {
		structType = elemType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("xpgx.Selectx: slice element must be a struct, got %s", elemType)
	}

	rows, err := p.query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	out := reflect.MakeSlice(slice.Type(), 0, 0)
	for rows.Next() {
		item := reflect.New(structType)
		if err := scanStruct(rows, item.Elem()); err != nil {
			return err
		}
		if isPtr {
			out = reflect.Append(out, item)
		} else {
			out = reflect.Append(out, item.Elem())
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	slice.Set(out)
	return nil
}

func (p *pool) query(ctx context.Context, query sq.Sqlizer) (pgx.Rows, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("query.ToSql: %w", err)
	}
	return p.Query(ctx, sql, args...)
}

func scanStruct(rows pgx.Rows, dst reflect.Value) error {
	index := fieldIndex(dst.Type())

	fields := rows.FieldDescriptions()
	targets := make([]interface{}, len(fields))
	for i, fd := range fields {
		idx, ok := index[fd.Name]
		if !ok {
			var skip interface{}
			targets[i] = &skip
			continue
		}
		targets[i] = dst.FieldByIndex(idx).Addr().Interface()
	}

	if err := rows.Scan(targets...); err != nil {
		return fmt.Errorf("rows.Scan: %w", err)
	}
	return nil
}

// fieldIndex maps db tag names to field indexes, descending into embedded structs.
func fieldIndex(t reflect.Type) map[string][]int {
	index := make(map[string][]int)

	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			path := append(append([]int{}, prefix...), i)

			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, path)
				continue
			}

			name, _, _ := strings.Cut(f.Tag.Get("db"), ",")
			if name == "" || name == "-" || !f.IsExported() {
				continue
			}
			if _, ok := index[name]; !ok {
				index[name] = path
			}
		}
	}
	walk(t, nil)

	return index
}
