package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/deckreport/internal/deck"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract slide titles, bodies and page images from a deck",
	Long: `Extract reads every slide of a .pptx or .pdf deck. When --pages names a
PDF export of the deck (or the deck itself is a PDF), each page is rendered
to slide_{n}.png in --images, optionally cropped with --crop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := logger(cmd)

		deckPath, _ := cmd.Flags().GetString("deck")
		pagesPath, _ := cmd.Flags().GetString("pages")
		imageDir, _ := cmd.Flags().GetString("images")
		cropFlag, _ := cmd.Flags().GetString("crop")
		asJSON, _ := cmd.Flags().GetBool("json")

		if cropFlag == "" {
			cropFlag = cfg.CropBox
		}
		crop, err := deck.ParseCropBox(cropFlag)
		if err != nil {
			return err
		}

		ex := deck.NewExtractor(deck.Options{
			DPI:               cfg.RenderDPI,
			Crop:              crop,
			Workers:           cfg.RenderWorkers,
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
		}, log)
		records, err := ex.Extract(cmd.Context(), deckPath, pagesPath, imageDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		for _, r := range records {
			fmt.Fprintf(out, "## Slide %d: %s\n", r.Index, r.Title)
			if body := strings.TrimSpace(r.Body); body != "" {
				fmt.Fprintln(out, body)
			}
			if _, err := os.Stat(r.ImagePath); err == nil {
				fmt.Fprintf(out, "[image: %s]\n", r.ImagePath)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().String("deck", "", "presentation to read (.pptx or .pdf)")
	extractCmd.Flags().String("pages", "", "PDF export of the deck used for page images")
	extractCmd.Flags().String("images", "images", "directory for rendered page images")
	extractCmd.Flags().String("crop", "", "crop box left,upper,right,lower in rendered pixels")
	extractCmd.Flags().Bool("json", false, "output slides as JSON")
	extractCmd.MarkFlagRequired("deck")

	rootCmd.AddCommand(extractCmd)
}
