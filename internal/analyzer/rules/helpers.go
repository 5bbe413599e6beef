package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/fossabot/person-db-skeleton/internal/schema"
)

//nolint:gochecknoglobals // read-only platform sets
var (
	allPlatforms = []string{schema.PlatformMySQL, schema.PlatformPostgres, schema.PlatformSQLite}
	nonPostgres  = []string{schema.PlatformMySQL, schema.PlatformSQLite}
	sqliteOnly   = []string{schema.PlatformSQLite}
	mysqlOnly    = []string{schema.PlatformMySQL}
)

// alterCmds returns the ALTER TABLE statement in stmt and those of its
// commands with the given subtype.
func alterCmds(stmt *pg_query.RawStmt, subtype pg_query.AlterTableType) (*pg_query.AlterTableStmt, []*pg_query.AlterTableCmd) {
	node, ok := stmt.GetStmt().GetNode().(*pg_query.Node_AlterTableStmt)
	if !ok {
		return nil, nil
	}

	var cmds []*pg_query.AlterTableCmd

	for _, n := range node.AlterTableStmt.GetCmds() {
		cmd := n.GetAlterTableCmd()
		if cmd != nil && cmd.GetSubtype() == subtype {
			cmds = append(cmds, cmd)
		}
	}

	return node.AlterTableStmt, cmds
}

// columnConstraint finds the first constraint of type ct on a column.
func columnConstraint(col *pg_query.ColumnDef, ct pg_query.ConstrType) *pg_query.Constraint {
	for _, n := range col.GetConstraints() {
		if c := n.GetConstraint(); c != nil && c.GetContype() == ct {
			return c
		}
	}

	return nil
}

// typeName returns the last component of a column type, e.g. "int8" for
// pg_catalog.int8.
func typeName(col *pg_query.ColumnDef) string {
	names := col.GetTypeName().GetNames()
	if len(names) == 0 {
		return ""
	}

	return names[len(names)-1].GetString_().GetSval()
}
