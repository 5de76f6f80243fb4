package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eunbi/vaxsight/internal/ingest"
	"github.com/eunbi/vaxsight/pkg/httputil"
)

var (
	fetchURL string
	fetchOut string
)

// fetchCmd downloads the source extract so the analyst does not have to
// pull it from the WHO portal by hand.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the MCV2 source extract",
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "source URL (default VAXSIGHT_SOURCE_URL)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "destination path (default VAXSIGHT_CSV_PATH)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	url := cfg.SourceURL
	if fetchURL != "" {
		url = fetchURL
	}
	dest := cfg.CSVPath
	if fetchOut != "" {
		dest = fetchOut
	}

	client := httputil.New(log, cfg.DownloadTimeout, cfg.DownloadRPS)
	downloader := ingest.NewDownloader(client, log)
	if err := downloader.Download(cmd.Context(), url, dest); err != nil {
		return err
	}

	fmt.Printf("Extract saved to %s\n", dest)
	return nil
}
