package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/PixelProof/internal/pkg/cache"
)

type statusOutput struct {
	ImageType string     `json:"image_type"`
	ImageID   string     `json:"image_id"`
	Status    string     `json:"status"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <imageType> <imageID>",
		Short: "Show the cached verification status of an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApplication(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if app.status == nil {
				return errors.New("status cache is not available (set CACHE_HOST)")
			}

			imageType, imageID := args[0], args[1]
			status, err := app.status.GetStatus(cmd.Context(), imageType, imageID)
			if err != nil {
				return fmt.Errorf("status of %s:%s: %w", imageType, imageID, err)
			}

			out := statusOutput{ImageType: imageType, ImageID: imageID, Status: status}
			switch at, err := app.status.GetStatusTimestamp(cmd.Context(), imageType, imageID); {
			case err == nil:
				out.UpdatedAt = &at
			case !errors.Is(err, cache.ErrMiss):
				return fmt.Errorf("status timestamp of %s:%s: %w", imageType, imageID, err)
			}
			return writeJSON(cmd, out)
		},
	}
}
