package main

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/PixelProof/app/models"
	"github.com/ManuelReschke/PixelProof/internal/pkg/verification"
)

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <imageID> <imageType> <filePath> <userID> [tutorialID]",
		Short: "Verify one image and print the result as JSON",
		Args:  cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := parseSubmission(args)
			if err != nil {
				return err
			}

			app, err := openApplication(cmd.Context())
			if err != nil {
				// callers always get a result object, even when the pipeline never started
				if werr := writeJSON(cmd, verification.FailedResult(sub, err)); werr != nil {
					log.Errorf("[CLI] Writing result: %v", werr)
				}
				return err
			}
			defer app.Close()

			return writeJSON(cmd, app.service.VerifyImage(cmd.Context(), sub))
		},
	}
}

// parseSubmission reads <imageID> <imageType> <filePath> <userID> [tutorialID]
func parseSubmission(args []string) (models.ImageSubmission, error) {
	if len(args) < 4 || len(args) > 5 {
		return models.ImageSubmission{}, fmt.Errorf("expected 4 or 5 arguments, got %d", len(args))
	}

	userID, err := parseID("userID", args[3])
	if err != nil {
		return models.ImageSubmission{}, err
	}
	sub := models.ImageSubmission{
		ImageID:    args[0],
		ImageType:  args[1],
		FilePath:   args[2],
		UploaderID: userID,
	}

	if len(args) == 5 && args[4] != "" {
		tutorialID, err := parseID("tutorialID", args[4])
		if err != nil {
			return models.ImageSubmission{}, err
		}
		sub.TutorialID = &tutorialID
	}
	return sub, nil
}

func parseID(name, value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, value)
	}
	return uint(id), nil
}
