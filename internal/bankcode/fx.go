package bankcode

import (
	"github.com/smallbiznis/clearwire/internal/config"
	"go.uber.org/fx"
)

// Module wires the immutable bank code directory.
var Module = fx.Module("bankcode",
	fx.Provide(func(cfg config.Config) (*Directory, error) {
		return Load(cfg.BankDirectoryFile)
	}),
)
