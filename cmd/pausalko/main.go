package main

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/pausalko/pausalko/internal/clock"
	"github.com/pausalko/pausalko/internal/config"
	"github.com/pausalko/pausalko/internal/server"
	"github.com/pausalko/pausalko/pkg/db"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		clock.Module,
		db.Module,
		fx.Provide(newSnowflakeNode),
		server.Module,
	).Run()
}

// newSnowflakeNode derives the node id from the hostname so replicas
// behind the same database do not mint colliding ids.
func newSnowflakeNode() (*snowflake.Node, error) {
	host, err := os.Hostname()
	if err != nil {
		host = "pausalko"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	return snowflake.NewNode(int64(h.Sum32() % 1024))
}
