package main

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/masato-nasu/pocketbridge/internal/app"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP share-target endpoint",
	Long: `Runs an HTTP server exposing the share-target boundary: GET /read with
url, text, title (or legacy u, link, href) query parameters resolves the
first normalizable URL to a JSON article.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		if serveListen != "" {
			cfg.ListenAddr = serveListen
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: a.Handler(log.Logger),
		}
		log.Info().Str("addr", cfg.ListenAddr).Msg("serving share target")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default :8787)")
}
