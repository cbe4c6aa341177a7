package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/deckreport/internal/config"
	"github.com/dgallion1/deckreport/internal/exemplar"
	"github.com/dgallion1/deckreport/internal/pipeline"
	"github.com/dgallion1/deckreport/internal/section"
	"github.com/dgallion1/deckreport/internal/synth"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a .docx report from a deck and a section table",
	Long: `Generate extracts the deck, synthesizes one narrative per section row of
--rows (.json, .csv, .yaml or .xlsx) and writes the report to --out.
Nothing is written when any section fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyGenerateFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		log := logger(cmd)

		deckPath, _ := cmd.Flags().GetString("deck")
		pagesPath, _ := cmd.Flags().GetString("pages")
		rowsPath, _ := cmd.Flags().GetString("rows")
		presentationContext, _ := cmd.Flags().GetString("context")
		templatePath, _ := cmd.Flags().GetString("template")
		exemplarPath, _ := cmd.Flags().GetString("exemplar")
		outPath, _ := cmd.Flags().GetString("out")
		crop, _ := cmd.Flags().GetString("crop")

		rows, err := section.LoadRows(rowsPath)
		if err != nil {
			return err
		}
		var style string
		if exemplarPath != "" {
			if style, err = exemplar.Load(exemplarPath); err != nil {
				return err
			}
		}

		client, err := synth.NewClient(synth.ProviderFromConfig(cfg))
		if err != nil {
			return err
		}
		llm := synth.NewService(client, cfg.SystemPrompt, cfg.MaxTokens, synth.NewLLMStats(time.Hour), log)

		svc, err := pipeline.NewService(cfg, llm, log)
		if err != nil {
			return err
		}
		sess, err := svc.OpenSession(cmd.Context(), deckPath, pagesPath, pipeline.CreateOptions{Crop: crop})
		if err != nil {
			return err
		}
		defer svc.DeleteSession(sess.ID)

		res, err := svc.Generate(cmd.Context(), sess, pipeline.GenerateRequest{
			Rows:         rows,
			Context:      presentationContext,
			TemplatePath: templatePath,
			Exemplar:     style,
		})
		if err != nil {
			return err
		}

		data, err := os.ReadFile(res.Path)
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}
		if err := pipeline.WriteFileAtomic(outPath, data); err != nil {
			return err
		}

		stats := llm.Stats().Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d sections, %d figures, %d model calls in %s\n",
			outPath, res.Sections, res.Figures, stats.Calls, res.Duration.Round(time.Millisecond))
		return nil
	},
}

// applyGenerateFlags lets explicit flags override file and env settings.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("preserve-bodies") {
		cfg.PreserveSlideBodies, _ = cmd.Flags().GetBool("preserve-bodies")
	}
	if cmd.Flags().Changed("duplicates") {
		cfg.DuplicateSections, _ = cmd.Flags().GetString("duplicates")
	}
	if cmd.Flags().Changed("image-width") {
		cfg.ImageWidthInches, _ = cmd.Flags().GetFloat64("image-width")
	}
}

func init() {
	generateCmd.Flags().String("deck", "", "presentation to read (.pptx or .pdf)")
	generateCmd.Flags().String("pages", "", "PDF export of the deck used for figures")
	generateCmd.Flags().String("rows", "", "section table (.json, .csv, .yaml or .xlsx)")
	generateCmd.Flags().String("context", "", "what the presentation is about")
	generateCmd.Flags().String("template", "", ".docx whose styles and content start the report")
	generateCmd.Flags().String("exemplar", "", "example document whose style the narrative imitates")
	generateCmd.Flags().String("crop", "", "crop box left,upper,right,lower in rendered pixels")
	generateCmd.Flags().String("out", config.DefaultOutputName, "output .docx path")
	generateCmd.Flags().Bool("preserve-bodies", false, "keep slide bodies instead of overwriting them with section text")
	generateCmd.Flags().String("duplicates", config.DefaultDuplicates, "duplicate section headings: allow or error")
	generateCmd.Flags().Float64("image-width", config.DefaultImageWidth, "figure width in inches")
	generateCmd.MarkFlagRequired("deck")
	generateCmd.MarkFlagRequired("rows")

	rootCmd.AddCommand(generateCmd)
}
