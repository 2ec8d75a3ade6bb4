package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/discograph/pkg/api"
	"github.com/matzehuels/discograph/pkg/pipeline"
	"github.com/matzehuels/discograph/pkg/storage"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		dataDir string
		memory  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve the analysis API over HTTP.

Documents archived through /v1/documents are kept in MongoDB when a URI is
configured (mongo.uri or DISCOGRAPH_MONGO_URI), in JSON files under
--data-dir otherwise, or in memory with --memory. Analysis results are
cached in Redis when redis.addr is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			if dataDir == "" {
				dataDir = c.Config.Server.DataDir
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			store, err := c.openStore(ctx, dataDir, memory)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := store.Close(closeCtx); err != nil {
					c.Logger.Warn("close store", "error", err)
				}
			}()

			return c.serve(ctx, runner, store, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory for archived documents")
	cmd.Flags().BoolVar(&memory, "memory", false, "keep archived documents in memory only")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) serve(ctx context.Context, runner *pipeline.Runner, store storage.Store, addr string) error {
	srv := api.New(runner, api.WithStore(store), api.WithLogger(c.Logger))
	printInfo("Listening on %s", StyleLink.Render("http://"+hostPort(addr)))
	return srv.ListenAndServe(ctx, addr)
}

// openStore picks the record backend: MongoDB when configured, memory when
// asked for, files otherwise.
func (c *CLI) openStore(ctx context.Context, dir string, memory bool) (storage.Store, error) {
	switch {
	case memory:
		c.Logger.Debug("using memory store")
		return storage.NewMemoryStore(), nil
	case c.Config.Mongo.URI != "":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		st, err := storage.NewMongoStore(connectCtx, storage.MongoConfig{
			URI:      c.Config.Mongo.URI,
			Database: c.Config.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using mongo store", "database", c.Config.Mongo.Database)
		return st, nil
	}

	if dir == "" {
		base, err := dataDir()
		if err != nil {
			return nil, fmt.Errorf("get data dir: %w", err)
		}
		dir = filepath.Join(base, "records")
	}
	st, err := storage.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("using file store", "dir", st.Path())
	return st, nil
}

// hostPort fills in localhost for addresses like ":8080".
func hostPort(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
