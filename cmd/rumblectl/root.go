package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"rumble_backend/internals/configs"
	database "rumble_backend/internals/databases"
	"rumble_backend/internals/seeds"
)

type commandContext struct {
	log *logrus.Entry
	db  *gorm.DB
}

// open connects lazily so --help works without a database.
func (c *commandContext) open() *gorm.DB {
	if c.db == nil {
		c.db = database.ConnectDB()
		database.TunePool(c.db)
	}
	return c.db
}

func (c *commandContext) close() {
	if c.db != nil {
		database.Close(c.db, c.log)
	}
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "rumblectl",
		Short:         "Rumble database maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx.log = configs.InitLogger("rumblectl")
			configs.LoadEnv()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newSeedCommand(ctx))
	return rootCmd
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.AutoMigrate(ctx.open()); err != nil {
				return err
			}
			ctx.log.Info("migration complete")
			return nil
		},
	}
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var file string
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert starter users, prompts and moderation flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := seeds.Load(file)
			if err != nil {
				return err
			}
			db := ctx.open()
			if migrate {
				if err := database.AutoMigrate(db); err != nil {
					return err
				}
			}
			res, err := seeds.RunAllSeeds(db, data, ctx.log)
			if err != nil {
				return err
			}
			ctx.log.WithFields(logrus.Fields{
				"users":   res.Users,
				"prompts": res.Prompts,
				"flags":   res.Flags,
			}).Info("seed complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed JSON file (embedded defaults when empty)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Run migrations first")
	return cmd
}
