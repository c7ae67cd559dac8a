package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/clearwire/internal/audit"
	"github.com/smallbiznis/clearwire/internal/bankcode"
	"github.com/smallbiznis/clearwire/internal/config"
	"github.com/smallbiznis/clearwire/internal/export"
	"github.com/smallbiznis/clearwire/internal/invoice"
	"github.com/smallbiznis/clearwire/internal/migration"
	"github.com/smallbiznis/clearwire/internal/observability"
	"github.com/smallbiznis/clearwire/internal/providers/pdf"
	"github.com/smallbiznis/clearwire/internal/server"
	"github.com/smallbiznis/clearwire/internal/supplier"
	"go.uber.org/fx"

	"github.com/smallbiznis/clearwire/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		bankcode.Module,
		audit.Module,
		supplier.Module,
		invoice.Module,
		export.Module,
		pdf.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
