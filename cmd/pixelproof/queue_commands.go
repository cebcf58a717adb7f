package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/PixelProof/app/models"
	"github.com/ManuelReschke/PixelProof/internal/pkg/env"
	"github.com/ManuelReschke/PixelProof/internal/pkg/verification"
)

func newProcessQueueCommand() *cobra.Command {
	var lockFile string
	var reclaim bool

	cmd := &cobra.Command{
		Use:   "process_queue [limit]",
		Short: "Verify queued images and print the batch result as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := verification.DefaultBatchSize
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid limit %q: must be a positive integer", args[0])
				}
				limit = n
			}

			if lockFile != "" {
				lock := flock.New(lockFile)
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire lock: %w", err)
				}
				if !ok {
					return fmt.Errorf("another process_queue holds %s", lockFile)
				}
				defer func() {
					if err := lock.Unlock(); err != nil {
						log.Warnf("[Queue] Releasing %s failed: %v", lockFile, err)
					}
				}()
			}

			app, err := openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if reclaim {
				if _, err := app.service.ReclaimStale(cmd.Context(), staleTimeout()); err != nil {
					log.Warnf("[Queue] Reclaiming stale entries failed: %v", err)
				}
			}

			batch, err := app.service.ProcessQueue(cmd.Context(), limit)
			if batch != nil {
				if werr := writeJSON(cmd, batch); werr != nil {
					return werr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&lockFile, "lock-file", "", "Hold an exclusive lock on this file while processing")
	cmd.Flags().BoolVar(&reclaim, "reclaim", true, "Requeue entries stuck in processing longer than STALE_PROCESSING_TIMEOUT first")
	return cmd
}

func newEnqueueCommand() *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "enqueue <imageID> <imageType> <filePath> <userID> [tutorialID]",
		Short: "Queue an image for verification",
		Args:  cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := parseSubmission(args)
			if err != nil {
				return err
			}
			p, err := models.ParseQueuePriority(priority)
			if err != nil {
				return err
			}

			app, err := openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			entry, err := app.service.Enqueue(cmd.Context(), sub, p)
			if err != nil {
				return err
			}
			return writeJSON(cmd, entry)
		},
	}

	cmd.Flags().StringVar(&priority, "priority", "medium", "Queue priority: high, medium or low")
	return cmd
}

func newReclaimCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "reclaim",
		Short: "Requeue entries stuck in processing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				olderThan = staleTimeout()
			}

			app, err := openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.service.ReclaimStale(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]any{
				"reclaimed":  n,
				"older_than": olderThan.String(),
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Minimum time in processing (default STALE_PROCESSING_TIMEOUT or 10m)")
	return cmd
}

func staleTimeout() time.Duration {
	return env.GetDuration("STALE_PROCESSING_TIMEOUT", verification.DefaultStaleAfter)
}
