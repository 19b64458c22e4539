package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sigitfad/ocr-reader/internal/match"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// MatchOutput explains how one text was corrected and matched.
type MatchOutput struct {
	Text       string          `json:"text"`
	Eligible   bool            `json:"eligible"`
	Candidate  match.Candidate `json:"candidate"`
	Normalized string          `json:"normalized,omitempty"`
	Detected   vocab.Family    `json:"detected_family,omitempty"`
	Accepted   bool            `json:"accepted"`
}

// matchCmd represents the match command.
var matchCmd = &cobra.Command{
	Use:   "match <text>...",
	Short: "Correct and match OCR text without an image",
	Long: `Run the correction and fuzzy matching stages on raw OCR text. This is
useful to check how a misread label would be resolved.

Examples:
  ocr-reader match 55023L
  ocr-reader match --family DIN "LN4 776A I55"`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}
		cfg, err := GetValidConfig()
		if err != nil {
			return err
		}
		vocabs, err := cfg.Vocabularies()
		if err != nil {
			return err
		}
		family, err := vocab.ParseFamily(cfg.Session.Family)
		if err != nil {
			return err
		}

		outputs := matchTexts(vocabs, family, cfg.Matcher, cfg.Session.AcceptThreshold, args)
		out := cmd.OutOrStdout()
		if format == outputFormatJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(outputs)
		}
		for _, o := range outputs {
			switch {
			case !o.Eligible:
				_, _ = fmt.Fprintf(out, "%q -> %q: too short\n", o.Text, o.Candidate.Corrected)
			case !o.Candidate.Found():
				_, _ = fmt.Fprintf(out, "%q -> %q: no match\n", o.Text, o.Candidate.Corrected)
			default:
				_, _ = fmt.Fprintf(out, "%q -> %q: %s score=%.2f family=%s accepted=%t\n",
					o.Text, o.Candidate.Corrected, o.Normalized, o.Candidate.Score, o.Detected, o.Accepted)
			}
		}
		return nil
	},
}

// matchTexts resolves texts against the vocabulary of family.
func matchTexts(vocabs vocab.Set, family vocab.Family, p match.Params, accept float64, texts []string) []MatchOutput {
	resolver := match.NewResolver(vocabs.For(family), p)
	classifier := match.NewClassifier(vocabs.DIN)
	outputs := make([]MatchOutput, 0, len(texts))
	for _, text := range texts {
		c, ok := resolver.Resolve(text)
		o := MatchOutput{Text: text, Eligible: ok, Candidate: c}
		if ok && c.Found() {
			o.Normalized = match.Normalize(family, c.Code)
			o.Detected = classifier.Classify(o.Normalized)
			o.Accepted = c.Score > accept && o.Detected == family
		}
		outputs = append(outputs, o)
	}
	return outputs
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
}
