package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/samefarrar/inkwell/internal/cli"
	"github.com/samefarrar/inkwell/internal/config"
	"github.com/samefarrar/inkwell/internal/db"
	"github.com/samefarrar/inkwell/internal/llm"
	"github.com/samefarrar/inkwell/internal/search"
	"github.com/samefarrar/inkwell/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inkwell",
		Short:         "Conversational writing assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Optional; environment variables win over the file.
			_ = godotenv.Load()
		},
	}
	root.AddCommand(newServeCmd(), newChatCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			cfg, err := config.LoadServer()
			if err != nil {
				return err
			}

			database, err := db.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()

			llmCfg := llm.LoadConfig()
			var observer llm.Observer = llm.NoopObserver{}
			if llmCfg.LogCalls {
				observer = llm.NewLogObserver(os.Stderr)
			}
			client := llm.NewOpenAIClient(llmCfg, observer)

			searcher := search.NewProvider(logger)

			return server.New(cfg, database, client, searcher, logger).ListenAndServe()
		},
	}
}

func newChatCmd() *cobra.Command {
	var serverURL, email, password string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive writing session against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = os.Getenv("INKWELL_EMAIL")
			}
			if password == "" {
				password = os.Getenv("INKWELL_PASSWORD")
			}
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password (or INKWELL_EMAIL / INKWELL_PASSWORD) are required")
			}
			return cli.Run(serverURL, email, password)
		},
	}

	defaultServer := os.Getenv("INKWELL_SERVER")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:8000"
	}
	cmd.Flags().StringVar(&serverURL, "server", defaultServer, "server base URL")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}
