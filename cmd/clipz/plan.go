package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"clipz-ai/internal/clipgen"
	"clipz-ai/internal/types"
	"clipz-ai/pkg/trendclient"
)

type planOutput struct {
	clipgen.Result
	Title   string `json:"title"`
	NoClips bool   `json:"noClips"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clipz",
		Short:         "Plan viral clip candidates for long-form videos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlanCmd())
	return root
}

func newPlanCmd() *cobra.Command {
	var (
		meta       types.VideoMetadata
		clipLength float64
		maxClips   int
		trendURL   string
		noFallback bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run the candidate pipeline offline and print the clips as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if meta.DurationSeconds < 0 {
				return errors.New("--duration must not be negative")
			}

			opts := clipgen.DefaultOptions()
			if clipLength > 0 {
				opts.ClipLengthSeconds = clipLength
			}
			if maxClips > 0 {
				opts.MaxClips = maxClips
			}
			opts.TrendFallback = !noFallback

			var trends types.TrendProvider
			if trendURL != "" {
				trends = trendclient.New(trendURL, 10*time.Second, "")
			}

			result, err := clipgen.NewGenerator(trends).Generate(cmd.Context(), meta, opts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(planOutput{Result: result, Title: meta.Title, NoClips: result.NoClips()})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&meta.Title, "title", "", "video title, used for content classification")
	flags.StringVar(&meta.Channel, "channel", "", "source channel credited in captions")
	flags.Float64Var(&meta.DurationSeconds, "duration", 0, "video duration in seconds")
	flags.StringVar(&meta.SourceUrl, "url", "", "source video URL, used for platform detection")
	flags.Float64Var(&clipLength, "clip-length", clipgen.DefaultClipLengthSeconds, "clip length in seconds")
	flags.IntVar(&maxClips, "max-clips", clipgen.DefaultMaxClips, "maximum number of clips")
	flags.StringVar(&trendURL, "trend-url", "", "live trend service base URL; built-in trends when empty")
	flags.BoolVar(&noFallback, "no-trend-fallback", false, "fail instead of using default patterns when the trend service errors")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}
