// Package repository provides the in-memory entity store used by every use case.
//
// Storage is a go-memdb table keyed by entity ID. Records are immutable once
// inserted: every write stores a fresh copy and every read hands back a copy, so
// callers can never reach the repository's internal state.
package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/dyluth/errand/pkg/entity"
	"github.com/hashicorp/go-memdb"
)

const (
	tableEntity = "entity"
	indexID     = "id"
)

// record is the stored row. Seq preserves insertion order for List.
type record struct {
	ID     string
	Seq    uint64
	Entity entity.Entity
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableEntity: {
				Name: tableEntity,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}
}

// Repository is an ordered, keyed collection of entities.
// Absence of an id is always reported as a false result, never as an error.
type Repository struct {
	db      *memdb.MemDB
	nextSeq uint64 // guarded by memdb's single-writer lock
	now     func() time.Time
}

// New creates a repository holding the given seed entities in order.
// Returns an error if a seed entity has a blank or duplicate id.
func New(seed ...entity.Entity) (*Repository, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("failed to create entity store: %w", err)
	}

	r := &Repository{db: db, now: time.Now}
	for i, e := range seed {
		if e.ID == "" {
			return nil, fmt.Errorf("seed entity at index %d has no id", i)
		}
		if !r.Add(e) {
			return nil, fmt.Errorf("duplicate seed entity id %q", e.ID)
		}
	}

	return r, nil
}

// FindByID returns a copy of the entity with the given id.
func (r *Repository) FindByID(id string) (entity.Entity, bool) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	rec, ok := r.lookup(txn, id)
	if !ok {
		return entity.Entity{}, false
	}
	return rec.Entity, true
}

// List returns every entity in insertion order.
// The slice is freshly allocated; mutating it does not affect the repository.
func (r *Repository) List() []entity.Entity {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableEntity, indexID)
	if err != nil {
		return []entity.Entity{}
	}

	var records []*record
	for obj := it.Next(); obj != nil; obj = it.Next() {
		records = append(records, obj.(*record))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	entities := make([]entity.Entity, 0, len(records))
	for _, rec := range records {
		entities = append(entities, rec.Entity)
	}
	return entities
}

// Len returns the number of stored entities.
func (r *Repository) Len() int {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableEntity, indexID)
	if err != nil {
		return 0
	}

	n := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		n++
	}
	return n
}

// Add stores a new entity. Returns false if the id is blank or already taken.
// CreatedAtMs is stamped when the caller left it zero.
func (r *Repository) Add(e entity.Entity) bool {
	if e.ID == "" {
		return false
	}

	txn := r.db.Txn(true)
	defer txn.Abort()

	if _, exists := r.lookup(txn, e.ID); exists {
		return false
	}

	if e.CreatedAtMs == 0 {
		e.CreatedAtMs = r.now().UnixMilli()
	}

	rec := &record{ID: e.ID, Seq: r.nextSeq, Entity: e}
	if err := txn.Insert(tableEntity, rec); err != nil {
		return false
	}
	r.nextSeq++

	txn.Commit()
	return true
}

// Update applies a patch to the entity with the given id.
// Returns false if no such entity exists.
func (r *Repository) Update(id string, patch entity.Patch) bool {
	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, ok := r.lookup(txn, id)
	if !ok {
		return false
	}

	updated := patch.Apply(existing.Entity)
	updated.UpdatedAtMs = r.now().UnixMilli()

	rec := &record{ID: existing.ID, Seq: existing.Seq, Entity: updated}
	if err := txn.Insert(tableEntity, rec); err != nil {
		return false
	}

	txn.Commit()
	return true
}

// Delete removes the entity with the given id.
// Returns false if no such entity exists; calling it twice is safe.
func (r *Repository) Delete(id string) bool {
	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, ok := r.lookup(txn, id)
	if !ok {
		return false
	}

	if err := txn.Delete(tableEntity, existing); err != nil {
		return false
	}

	txn.Commit()
	return true
}

func (r *Repository) lookup(txn *memdb.Txn, id string) (*record, bool) {
	if id == "" {
		return nil, false
	}

	raw, err := txn.First(tableEntity, indexID, id)
	if err != nil || raw == nil {
		return nil, false
	}

	rec, ok := raw.(*record)
	if !ok {
		return nil, false
	}
	return rec, true
}
