package schema

import (
	"maps"
	"slices"
)

// Profiles maps a platform name to the ordered session statements issued
// before a migration runs on that platform.
type Profiles map[string][]string

// DefaultProfiles returns the built-in table. Only MySQL needs a bootstrap:
// strict ANSI mode, serializable isolation and a UTC session clock.
func DefaultProfiles() Profiles {
	return Profiles{
		PlatformMySQL: {
			"SET SESSION SQL_MODE = 'ANSI,TRADITIONAL'",
			"SET SESSION TRANSACTION ISOLATION LEVEL SERIALIZABLE",
			"SET SESSION TIME_ZONE = '+00:00'",
		},
	}
}

// Statements returns a copy of the statements for platform. Unknown
// platforms yield none.
func (p Profiles) Statements(platform string) []string {
	return slices.Clone(p[platform])
}

// With returns a copy of p where platform maps to stmts, replacing any
// existing entry.
func (p Profiles) With(platform string, stmts ...string) Profiles {
	return p.Merge(map[string][]string{platform: stmts})
}

// Merge returns a copy of p with every entry of overrides replacing the
// entry for the same platform.
func (p Profiles) Merge(overrides map[string][]string) Profiles {
	out := make(Profiles, len(p)+len(overrides))
	maps.Copy(out, p)

	for platform, stmts := range overrides {
		out[platform] = slices.Clone(stmts)
	}

	return out
}
