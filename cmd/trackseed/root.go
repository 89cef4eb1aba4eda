package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"trackseed/internal/app"
	"trackseed/internal/config"
)

// cli carries state shared by the subcommands of one invocation.
type cli struct {
	verbose  bool
	planPath string
	count    int

	log *slog.Logger
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "trackseed",
		Short: "Seed the time-tracking database with synthetic data",
		Long: `trackseed declares the User, Project, Task and TimeEntry document schemas
and fills the store with fake records. Without a subcommand it runs the seed plan,
which by default inserts 4 users with distinct emails into mongodb://localhost:27017/test.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.OutOrStdout())
		},
		RunE: c.runSeed,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&c.planPath, "plan", "", "YAML seed plan (default: SEED_PLAN or 4 users)")

	seed := newSeedCmd(c)
	root.Flags().AddFlagSet(seed.Flags())
	root.AddCommand(seed)
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newVerifyCmd(c))
	return root
}

func (c *cli) setup(out io.Writer) error {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	c.log = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(c.log)

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.planPath != "" {
		cfg.Seed.PlanPath = c.planPath
	}
	c.cfg = cfg
	return nil
}

// open connects the configured store. Callers must Close the app.
func (c *cli) open(cmd *cobra.Command) (*app.App, error) {
	a, err := app.New(cmd.Context(), c.log, c.cfg)
	if err != nil {
		c.log.Error("failed to initialize app", slog.String("error", err.Error()))
		return nil, err
	}
	return a, nil
}
