package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eunbi/vaxsight/internal/analyze"
	"github.com/eunbi/vaxsight/internal/chart"
	"github.com/eunbi/vaxsight/internal/clean"
	"github.com/eunbi/vaxsight/internal/export"
	"github.com/eunbi/vaxsight/internal/ingest"
	"github.com/eunbi/vaxsight/internal/query"
	"github.com/eunbi/vaxsight/internal/shell"
)

// shellCmd starts the interactive menu explicitly; it is also the root
// command's default action.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive analysis shell",
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	db, repo, err := openRepo(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline := ingest.NewPipeline(ingest.NewReader(log), clean.New(log), repo, log)

	sh := shell.New(
		cfg,
		log,
		repo,
		pipeline,
		query.New(log),
		analyze.New(log),
		export.New(log),
		chart.New(log),
		os.Stdin,
		os.Stdout,
	)
	return sh.Run(cmd.Context())
}
