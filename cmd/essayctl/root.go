package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dgallion1/essaygest/internal/config"
	"github.com/dgallion1/essaygest/internal/history"
)

// commandContext holds lazily loaded state shared by subcommands.
type commandContext struct {
	dbFlag     *string
	outputFlag *string

	once sync.Once
	cfg  config.Config
	err  error
}

func newCommandContext(dbFlag, outputFlag *string) *commandContext {
	return &commandContext{dbFlag: dbFlag, outputFlag: outputFlag}
}

func (c *commandContext) config() (config.Config, error) {
	c.once.Do(func() {
		if _, c.err = config.LoadDotenv(); c.err != nil {
			return
		}
		c.cfg, c.err = config.Load()
		if c.err == nil && *c.dbFlag != "" {
			c.cfg.HistoryDB = *c.dbFlag
		}
	})
	return c.cfg, c.err
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.HistoryDB)
}

func (c *commandContext) output() (outputMode, error) {
	return parseOutputMode(*c.outputFlag)
}

func newRootCommand() *cobra.Command {
	var dbFlag string
	var outputFlag string

	ctx := newCommandContext(&dbFlag, &outputFlag)

	rootCmd := &cobra.Command{
		Use:           "essayctl",
		Short:         "Inspect essaygest history and layout reconstruction",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.output(); err != nil {
				return err
			}
			if _, err := ctx.config(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "History database path (default from HISTORY_DB)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "auto", "Output format: auto, table or json")

	rootCmd.AddCommand(newReconstructCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
