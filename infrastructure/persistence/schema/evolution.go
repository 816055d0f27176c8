// Package schema upgrades stored items written by older releases to the
// attribute layout the current code reads.
package schema

import (
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// VersionAttribute is the item attribute holding the item schema version.
// Items without it are version 1.
const VersionAttribute = "SchemaVersion"

// Item is a raw stored item
type Item = map[string]types.AttributeValue

// Migration rewrites an item from one schema version to the next
type Migration struct {
	FromVersion int
	ToVersion   int
	Description string
	Up          func(item Item) error
}

// Evolution holds the chain of item migrations
type Evolution struct {
	migrations map[int]Migration
	current    int
}

// NewEvolution creates an evolution whose current version is 1
func NewEvolution() *Evolution {
	return &Evolution{migrations: make(map[int]Migration), current: 1}
}

// RegisterMigration adds one step to the chain. Steps must advance the
// version by exactly one and must not overlap.
func (e *Evolution) RegisterMigration(m Migration) error {
	if m.ToVersion != m.FromVersion+1 {
		return fmt.Errorf("invalid migration: %d -> %d must advance by one version", m.FromVersion, m.ToVersion)
	}
	if m.Up == nil {
		return fmt.Errorf("migration %d -> %d has no Up function", m.FromVersion, m.ToVersion)
	}
	if _, exists := e.migrations[m.FromVersion]; exists {
		return fmt.Errorf("migration from %d to %d already exists", m.FromVersion, m.ToVersion)
	}
	e.migrations[m.FromVersion] = m
	if m.ToVersion > e.current {
		e.current = m.ToVersion
	}
	return nil
}

// CurrentVersion is the version new items are written with
func (e *Evolution) CurrentVersion() int {
	return e.current
}

// Upgrade migrates item in place to the current version and returns the
// version it was stored with
func (e *Evolution) Upgrade(item Item) (int, error) {
	from, err := itemVersion(item)
	if err != nil {
		return 0, err
	}
	if from > e.current {
		return from, fmt.Errorf("item schema version %d is newer than supported version %d", from, e.current)
	}

	for v := from; v < e.current; v++ {
		m, ok := e.migrations[v]
		if !ok {
			return from, fmt.Errorf("no migration from schema version %d", v)
		}
		if err := m.Up(item); err != nil {
			return from, fmt.Errorf("migration %d -> %d (%s): %w", m.FromVersion, m.ToVersion, m.Description, err)
		}
	}
	item[VersionAttribute] = &types.AttributeValueMemberN{Value: fmt.Sprint(e.current)}
	return from, nil
}

// History lists the registered migrations in order
func (e *Evolution) History() []Migration {
	out := make([]Migration, 0, len(e.migrations))
	for _, m := range e.migrations {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FromVersion < out[j].FromVersion })
	return out
}

func itemVersion(item Item) (int, error) {
	av, ok := item[VersionAttribute]
	if !ok {
		return 1, nil
	}
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("%s is not a number", VersionAttribute)
	}
	var v int
	if _, err := fmt.Sscan(n.Value, &v); err != nil {
		return 0, fmt.Errorf("parse %s: %w", VersionAttribute, err)
	}
	return v, nil
}
