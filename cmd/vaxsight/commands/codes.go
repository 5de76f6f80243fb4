package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// codesCmd lists the distinct country codes in the stored data.
var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List stored country codes",
	RunE:  runCodes,
}

func init() {
	rootCmd.AddCommand(codesCmd)
}

func runCodes(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	db, repo, err := openRepo(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	codes, err := repo.CountryCodes(cmd.Context())
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return fmt.Errorf("no stored data; run 'vaxsight ingest' first")
	}

	fmt.Printf("%d country codes:\n", len(codes))
	for i := 0; i < len(codes); i += 10 {
		end := i + 10
		if end > len(codes) {
			end = len(codes)
		}
		fmt.Println(strings.Join(codes[i:end], "  "))
	}
	return nil
}
