// Package query wraps the mongo driver for the repositories. Read the tests
// for usage of each method.
package query

import (
	"fmt"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
)

var (
	// ErrNotFound is mongo document not found error
	ErrNotFound = fmt.Errorf("document not found")

	// ErrDuplicateKey is an error when violating unique index
	ErrDuplicateKey = fmt.Errorf("duplicate key")

	// ErrCollScan is error for unindexed query
	ErrCollScan = fmt.Errorf("COLLSCAN is not allowed")
)

// Index describes an index by its keys, "-field" for descending
type Index struct {
	Keys   []string
	Unique bool
}

// Mongo abstracts the mongo layer
type Mongo interface {
	// Insert returns ErrDuplicateKey when a unique index is violated
	Insert(context ctx.Ctx, table domain.Table, insert interface{}) error

	// FindOne returns ErrNotFound when nothing matches
	FindOne(context ctx.Ctx, table domain.Table, query, result interface{}) error

	// Count returns the number of documents matching selector
	Count(context ctx.Ctx, table domain.Table, selector interface{}) (n int, err error)

	// Upsert replaces the document matching selector, inserting it if absent
	Upsert(context ctx.Ctx, table domain.Table, selector, update interface{}) error

	// Search sorts by sortFields (ex "seq" ascending, "-seq" descending). limit 0
	// means no limit.
	Search(context ctx.Ctx, table domain.Table, offset, limit int, sortFields []string, query, results interface{}) error

	// Remove returns ErrNotFound if selector does not match any documents
	Remove(context ctx.Ctx, table domain.Table, selector interface{}) error

	// Increment adds inc to field and decodes the updated document into
	// result, inserting the document if absent
	Increment(context ctx.Ctx, table domain.Table, selector, result interface{}, field string, inc interface{}) error

	// EnsureIndexes creates the indexes if they don't exist yet
	EnsureIndexes(context ctx.Ctx, table domain.Table, indexes ...Index) error
}
