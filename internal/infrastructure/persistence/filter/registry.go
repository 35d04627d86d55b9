// Package filter translates named filter criteria into GORM query
// predicates.
//
// Each entity type owns a Registry mapping filter keys to predicates.
// Apply folds the query through every predicate whose key is present in
// the criteria, so distinct keys combine with AND semantics. Keys with no
// registered predicate are ignored, and so are values a predicate cannot
// parse: list queries are lenient and never fail on bad criteria.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"gorm.io/gorm"
)

// Env carries evaluation-time context for predicates
type Env struct {
	Now time.Time
}

// Predicate narrows db by a raw criterion value.
// It returns ok=false when the value cannot be interpreted, in which case
// the criterion is skipped.
type Predicate func(db *gorm.DB, value string, env Env) (result *gorm.DB, ok bool)

// SortOrder is a resolved ORDER BY column and direction
type SortOrder struct {
	Column string
	Desc   bool
}

// String renders the clause for gorm's Order
func (s SortOrder) String() string {
	if s.Desc {
		return s.Column + " DESC"
	}
	return s.Column + " ASC"
}

// Registry maps filter keys to predicates and external sort names to columns
type Registry struct {
	table        string
	predicates   map[string]Predicate
	sortFields   map[string]string
	defaultOrder SortOrder
}

// NewRegistry creates an empty registry for table
func NewRegistry(table string) *Registry {
	return &Registry{
		table:        table,
		predicates:   make(map[string]Predicate),
		sortFields:   make(map[string]string),
		defaultOrder: SortOrder{Column: table + ".id"},
	}
}

// Table returns the table the registry filters
func (r *Registry) Table() string {
	return r.table
}

// Register binds a predicate to key and any aliases
func (r *Registry) Register(key string, p Predicate, aliases ...string) *Registry {
	r.predicates[key] = p
	for _, alias := range aliases {
		r.predicates[alias] = p
	}
	return r
}

// Sortable whitelists column for ordering, reachable by its own name and by
// any external aliases such as camelCase names.
func (r *Registry) Sortable(column string, names ...string) *Registry {
	r.sortFields[column] = column
	for _, name := range names {
		r.sortFields[name] = column
	}
	return r
}

// DefaultOrder sets the ordering used when no valid order-by is supplied.
// expr uses the same "-field" convention as ResolveOrder and must name a
// field already made sortable.
func (r *Registry) DefaultOrder(expr string) *Registry {
	if order, ok := r.parseOrder(expr); ok {
		r.defaultOrder = order
	}
	return r
}

// Keys returns the registered filter keys, sorted
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.predicates))
	for k := range r.predicates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key has a registered predicate
func (r *Registry) Has(key string) bool {
	_, ok := r.predicates[key]
	return ok
}

// Apply folds db through every predicate whose key is present in criteria.
// Keys are applied in sorted order so the generated SQL is stable.
func (r *Registry) Apply(db *gorm.DB, criteria shared.Criteria, env Env) *gorm.DB {
	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		predicate, ok := r.predicates[key]
		if !ok {
			continue
		}
		value, present := criteria.Get(key)
		if !present {
			continue
		}
		if next, applied := predicate(db, value, env); applied {
			db = next
		}
	}
	return db
}

// ResolveOrder maps an order-by expression onto a whitelisted column.
// Unknown fields resolve to the default order.
func (r *Registry) ResolveOrder(orderBy string) SortOrder {
	if order, ok := r.parseOrder(orderBy); ok {
		return order
	}
	return r.defaultOrder
}

// ApplyOrder orders db by orderBy with the primary key as tie-breaker
func (r *Registry) ApplyOrder(db *gorm.DB, orderBy string) *gorm.DB {
	order := r.ResolveOrder(orderBy)
	db = db.Order(order.String())
	if idColumn := r.table + ".id"; order.Column != idColumn {
		db = db.Order(idColumn + " ASC")
	}
	return db
}

func (r *Registry) parseOrder(expr string) (SortOrder, bool) {
	field := strings.TrimSpace(expr)
	desc := false
	switch {
	case strings.HasPrefix(field, "-"):
		desc = true
		field = field[1:]
	case strings.HasPrefix(field, "+"):
		field = field[1:]
	}
	if field == "" {
		return SortOrder{}, false
	}
	column, ok := r.sortFields[field]
	if !ok {
		return SortOrder{}, false
	}
	return SortOrder{Column: r.table + "." + column, Desc: desc}, true
}
