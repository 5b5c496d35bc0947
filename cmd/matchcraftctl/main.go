// Command matchcraftctl inspects and maintains a MatchCraft store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	matchcraft "github.com/kailas-cloud/matchcraft/pkg/sdk"
)

// storeFlags select the store the data commands connect to.
type storeFlags struct {
	driver   string
	addr     string
	password string
	timeout  time.Duration
}

func (f *storeFlags) connect(ctx context.Context) (*matchcraft.Client, error) {
	var opt matchcraft.Option
	switch f.driver {
	case "redis":
		opt = matchcraft.WithRedis(f.addr, f.password)
	case "valkey":
		opt = matchcraft.WithValkey(f.addr, f.password)
	case "memory":
		opt = matchcraft.WithMemory()
	default:
		return nil, fmt.Errorf("unknown driver %q (want redis, valkey or memory)", f.driver)
	}
	return matchcraft.New(ctx, opt, matchcraft.WithReadinessTimeout(f.timeout))
}

func newRootCmd() *cobra.Command {
	flags := &storeFlags{}

	root := &cobra.Command{
		Use:   "matchcraftctl",
		Short: "Inspect and maintain a MatchCraft profile store",
		Long: `matchcraftctl talks to the MatchCraft store directly.

Available commands:
  tokens  - Show the search tokens a profile would be indexed under
  suggest - Run an autocomplete lookup
  reindex - Recompute search tokens for every profile
  version - Print build information`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.driver, "driver", envOr("MATCHCRAFT_DRIVER", "redis"), "store driver: redis, valkey or memory")
	pf.StringVar(&flags.addr, "addr", envOr("MATCHCRAFT_ADDR", "localhost:6379"), "store address")
	pf.StringVar(&flags.password, "password", os.Getenv("MATCHCRAFT_PASSWORD"), "store password")
	pf.DurationVar(&flags.timeout, "timeout", 10*time.Second, "store readiness timeout")

	root.AddCommand(
		newTokensCmd(),
		newSuggestCmd(flags),
		newReindexCmd(flags),
		newVersionCmd(),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
