package xpgx

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type base struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

type extended struct {
	base
	Name    string `db:"name,omitempty"`
	Skipped string `db:"-"`
	NoTag   string
	hidden  string `db:"hidden"`
}

func TestFieldIndex(t *testing.T) {
	index := fieldIndex(reflect.TypeOf(extended{}))

	assert.Equal(t, map[string][]int{
		"id":         {0, 0},
		"created_at": {0, 1},
		"name":       {1},
	}, index)
}
