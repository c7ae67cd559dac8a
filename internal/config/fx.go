package config

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/clearwire/pkg/db"
)

// Module wires application and export-policy configuration.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewExportPolicyHolder,
		func(cfg Config) db.Config { return cfg.Database() },
	),
)
