// Package skeleton bundles the person/contact schema: people, emails,
// addresses, phone numbers and their lookup tables.
package skeleton

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/fossabot/person-db-skeleton/internal/migration"
	"github.com/fossabot/person-db-skeleton/internal/schema"
)

//go:embed sql/*.sql
var files embed.FS

// SeedVersion is the Go-coded version that fills the lookup tables.
const SeedVersion = "20190601000500"

// Lookup is one row of a lookup table.
type Lookup struct {
	ID   int
	Name string
}

// LookupValues lists the rows seeded into each lookup table, keyed by table.
// Changing them changes the seed checksum.
func LookupValues() map[string][]Lookup {
	return map[string][]Lookup{
		"genders": {
			{1, "female"},
			{2, "male"},
			{3, "non-binary"},
			{4, "unspecified"},
		},
		"pronouns": {
			{1, "she/her"},
			{2, "he/him"},
			{3, "they/them"},
		},
		"address_types": {
			{1, "home"},
			{2, "work"},
			{3, "billing"},
			{4, "shipping"},
		},
		"phone_types": {
			{1, "mobile"},
			{2, "home"},
			{3, "work"},
			{4, "fax"},
		},
	}
}

// lookupTables is the seeding order; rollback deletes in reverse.
var lookupTables = []string{"genders", "pronouns", "address_types", "phone_types"} //nolint:gochecknoglobals // fixed table order

// Migrations returns every bundled version sorted by version.
func Migrations() ([]migration.Migration, error) {
	ms, err := migration.LoadFromFS(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("loading bundled schema: %w", err)
	}

	up, down := seedScripts(LookupValues())
	seed := migration.FromCode(schema.Func{
		Version: SeedVersion,
		UpFn: func(ctx context.Context, conn schema.Connection) error {
			return schema.ExecScript(ctx, conn, up)
		},
		DownFn: func(ctx context.Context, conn schema.Connection) error {
			return schema.ExecScript(ctx, conn, down)
		},
	}, "seed_lookup_values", up)

	ms = append(ms, seed)
	if err := migration.Validate(ms); err != nil {
		return nil, fmt.Errorf("bundled schema: %w", err)
	}

	return migration.Sort(ms), nil
}

// seedScripts renders the INSERT and DELETE scripts for the lookup rows.
func seedScripts(values map[string][]Lookup) (up, down string) {
	var ub, db strings.Builder

	for _, table := range lookupTables {
		for _, row := range values[table] {
			fmt.Fprintf(&ub, "INSERT INTO %s (id, name) VALUES (%d, '%s');\n",
				table, row.ID, strings.ReplaceAll(row.Name, "'", "''"))
		}
	}

	for i := len(lookupTables) - 1; i >= 0; i-- {
		fmt.Fprintf(&db, "DELETE FROM %s;\n", lookupTables[i])
	}

	return ub.String(), db.String()
}
