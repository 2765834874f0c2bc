package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"student-backend/internal/client"
	"student-backend/internal/explain"
	"student-backend/internal/records"
	"student-backend/internal/submission"
)

var (
	predictModel string
	predictPhoto string
	historyLimit int
	historyFull  bool
	photoOut     string
)

// predictCmd submits a draft file and prints the explained result
var predictCmd = &cobra.Command{
	Use:   "predict <draft-file>",
	Short: "Submit a draft for prediction",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent predictions, newest first",
	RunE:  runHistory,
}

var photoCmd = &cobra.Command{
	Use:   "photo <record-id>",
	Short: "Download the photo stored with a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhoto,
}

func init() {
	predictCmd.Flags().StringVarP(&predictModel, "model", "m", "", "model type: ml or dl (default from config)")
	predictCmd.Flags().StringVar(&predictPhoto, "photo", "", "optional student photo to upload")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records to show")
	historyCmd.Flags().BoolVar(&historyFull, "explain", false, "print the explanation of each record")

	photoCmd.Flags().StringVarP(&photoOut, "output", "o", "", "destination file (default <record-id> plus extension)")
}

func runPredict(cmd *cobra.Command, args []string) error {
	loaded, err := readDraft(args[0])
	if err != nil {
		return err
	}
	modelType := predictModel
	if modelType == "" {
		modelType = cfg.ModelType
	}

	var photo *client.Photo
	if predictPhoto != "" {
		f, err := os.Open(predictPhoto)
		if err != nil {
			return fmt.Errorf("open photo: %w", err)
		}
		defer f.Close()
		photo = &client.Photo{
			Filename:    filepath.Base(predictPhoto),
			ContentType: mime.TypeByExtension(filepath.Ext(predictPhoto)),
			Data:        f,
		}
	}

	ctrl := submission.New(api, sess)
	defer ctrl.Close()
	ctrl.Edit(func(d *records.Draft) { *d = *loaded })

	resp, err := ctrl.Submit(cmd.Context(), modelType, photo)
	if err != nil {
		renderFieldErrors(cmd.OutOrStdout(), ctrl.State().FieldErrors)
		return err
	}
	view, _ := ctrl.View()
	renderView(cmd.OutOrStdout(), resp.RecordID, view)
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	rows, err := api.History(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No predictions yet")
		return nil
	}
	renderHistory(out, rows)
	if historyFull {
		for _, row := range rows {
			color.New(color.Bold).Fprintf(out, "\n%s (%s)\n", row.Name, row.ID)
			fmt.Fprintln(out, explain.Build(row.Response()).Explanation)
		}
	}
	return nil
}

func runPhoto(cmd *cobra.Command, args []string) error {
	recordID := args[0]
	data, contentType, err := api.Photo(cmd.Context(), recordID)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return fmt.Errorf("record %s has no photo", recordID)
		}
		return err
	}
	dest := photoOut
	if dest == "" {
		dest = recordID + photoExtension(contentType)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write photo: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", dest, len(data))
	return nil
}

func photoExtension(contentType string) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

var _ submission.Predictor = (*client.Client)(nil)
