package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"studydeck/internal/bootstrap"
	"studydeck/internal/ingestion"
)

func newIngestCmd() *cobra.Command {
	var sessionID uint
	cmd := &cobra.Command{
		Use:   "ingest [--session N] FILE...",
		Short: "Chunk, embed and store local files",
		Long: `Ingests each FILE into a session and prints one JSON progress event
per line. Without --session a new session is created and its id is
reported in the first event.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readFiles(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, true)
			if err != nil {
				return err
			}
			defer e.close()

			embedder, _ := bootstrap.NewAI(e.cfg, e.logger)
			pipeline := bootstrap.NewPipeline(e.cfg, e.store, embedder, e.pool, e.logger)

			req := ingestion.Request{Files: files}
			if cmd.Flags().Changed("session") {
				req.SessionID = &sessionID
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for ev := range pipeline.Ingest(ctx, req) {
				if err := enc.Encode(ev); err != nil {
					return fmt.Errorf("write event failed: %w", err)
				}
				if ev.Status == ingestion.StatusError {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed", failed, len(files))
			}
			return nil
		},
	}
	cmd.Flags().UintVar(&sessionID, "session", 0, "existing session id to append to")
	return cmd
}

func readFiles(paths []string) ([]ingestion.File, error) {
	files := make([]ingestion.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s failed: %w", p, err)
		}
		files = append(files, ingestion.File{
			Filename:    filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Data:        data,
		})
	}
	return files, nil
}
