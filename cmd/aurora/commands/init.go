package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sabinadams/aurora/pkg/config"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter aurora.config.json",
		Long: `Write a starter configuration that consolidates ./prisma/**/*.prisma into
./prisma/schema.prisma, and create the prisma directory.`,
		Example: `  # Initialize the current project
  aurora init

  # Overwrite an existing configuration
  aurora init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			path := configPath
			if path == "" {
				path = filepath.Join(dir, config.DefaultFileName)
			}

			log.Debug().
				Str("config", path).
				Bool("force", force).
				Msg("Initializing project")

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			content, err := json.MarshalIndent(config.Starter(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			content = append(content, '\n')

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			if err := os.WriteFile(path, content, 0o644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Created config file: %s\n", path)

			prismaDir := filepath.Join(filepath.Dir(path), "prisma")
			if err := os.MkdirAll(prismaDir, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", prismaDir, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Created directory: %s\n", prismaDir)

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration")

	return cmd
}
