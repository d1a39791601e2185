/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/fulmenhq/scriptcat/pkg/device"
	"github.com/fulmenhq/scriptcat/pkg/logger"
	"github.com/spf13/cobra"
)

func newPutCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "put <host> <id> <file>",
		Short: "Upload a script to a device",
		Long: `Upload a local script to a device: stop script <id>, send the code with
Script.PutCode in ordered chunks, then start it again. Each RPC reply is
printed. The first failure aborts the upload; there is no retry.`,
		Args: cobra.ExactArgs(3),
		RunE: runPut,
	}
	c.Flags().Duration("timeout", 0, "Per-request timeout (default from config, 2s)")
	c.Flags().Int("chunk-size", 0, "Characters per PutCode chunk (default from config, 1024)")
	return c
}

func runPut(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	host, idStr, file := args[0], args[1], args[2]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return fmt.Errorf("invalid script id %q: %w", idStr, err)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		timeout = cfg.Device.Timeout
	}
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	if chunkSize <= 0 {
		chunkSize = cfg.Device.ChunkSize
	}

	code, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	out := cmd.OutOrStdout()
	client, err := device.NewClient(host, timeout,
		device.WithChunkSize(chunkSize),
		device.WithObserver(func(r device.Response) {
			_, _ = fmt.Fprintf(out, "%s %s\n", r.Method, string(r.Raw))
		}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	_, _ = fmt.Fprintf(out, "total %d bytes\n", len(code))
	logger.Info("Uploading script", logger.String("host", host), logger.Int("id", id), logger.String("file", file))
	if err := client.Upload(ctx, id, string(code)); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	logger.Info("Upload complete", logger.Int("chunks", len(device.Chunks(string(code), chunkSize))))
	return nil
}
