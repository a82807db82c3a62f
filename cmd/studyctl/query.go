package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"studydeck/internal/bootstrap"
	"studydeck/internal/retrieval"
)

func newQueryCmd() *cobra.Command {
	var (
		prompt    string
		sessionID uint
		k         int
	)
	cmd := &cobra.Command{
		Use:   "query --prompt P [--session N] [--k K]",
		Short: "Print the chunks retrieval would feed the generator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hasSession := cmd.Flags().Changed("session")
			if prompt == "" && !hasSession {
				return errors.New("need --prompt or --session")
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer e.close()

			q := retrieval.Query{}
			if hasSession {
				q.SessionID = &sessionID
			}
			if cmd.Flags().Changed("k") {
				q.K = &k
			}
			if prompt != "" {
				embedder, _ := bootstrap.NewAI(e.cfg, e.logger)
				vec, err := embedder.EmbedText(ctx, prompt)
				if err != nil {
					return fmt.Errorf("embed prompt failed: %w", err)
				}
				q.Vector = vec
			}

			retriever := retrieval.New(e.store,
				retrieval.WithDefaultTopK(e.cfg.Retrieval.DefaultTopK),
				retrieval.WithLogger(e.logger))
			results, err := retriever.TopK(ctx, q)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "text to rank chunks against")
	cmd.Flags().UintVar(&sessionID, "session", 0, "restrict to this session")
	cmd.Flags().IntVar(&k, "k", retrieval.DefaultTopK, "number of chunks")
	return cmd
}
