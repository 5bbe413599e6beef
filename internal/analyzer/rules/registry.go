package rules

import "github.com/fossabot/person-db-skeleton/internal/analyzer"

// NewDefaultRegistry returns a Registry with all built-in rules.
func NewDefaultRegistry() *analyzer.Registry {
	r := analyzer.NewRegistry()
	r.Register(NewCreateIndexRule())
	r.Register(NewAddColumnRule())
	r.Register(NewAddConstraintRule())
	r.Register(NewAlterColumnTypeRule())
	r.Register(NewSetNotNullRule())
	r.Register(NewDropTableRule())
	r.Register(NewVacuumRule())
	r.Register(NewLockTableRule())
	r.Register(NewRenameRule())
	r.Register(NewSerialTypeRule())

	return r
}
