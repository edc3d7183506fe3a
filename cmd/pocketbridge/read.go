package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var readJSON bool

var readCmd = &cobra.Command{
	Use:   "read <url-or-text>",
	Short: "Resolve a URL (or shared text containing one) to article text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		// Shared text may arrive as several shell words; rejoin before
		// sniffing for the URL.
		raw := strings.Join(args, " ")
		art, err := a.Read(cmd.Context(), raw)
		if err != nil {
			return err
		}

		if readJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(art)
		}
		fmt.Printf("%s\n%s • %s • %s\n\n%s\n",
			art.Title,
			hostnameOf(art.URL),
			art.Source,
			art.FetchedAt.Format("01/02 15:04"),
			art.Text,
		)
		return nil
	},
}

func init() {
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Emit the article as JSON")
}
