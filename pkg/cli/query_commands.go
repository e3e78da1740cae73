package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"content-curator/pkg/curator"
	"content-curator/pkg/domain"
	"content-curator/pkg/video"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var level, contentType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued content, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if level != "" && contentType != "" {
				return errors.New("--level and --type cannot be combined")
			}

			defer ctx.close()
			store, _, _, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}

			var records []domain.ContentRecord
			switch {
			case level != "":
				l, err := domain.ParseLevel(level)
				if err != nil {
					return err
				}
				records, err = store.ListByLevel(cmd.Context(), l)
				if err != nil {
					return err
				}
			case contentType != "":
				t, err := domain.ParseContentType(contentType)
				if err != nil {
					return err
				}
				records, err = store.ListByType(cmd.Context(), t)
				if err != nil {
					return err
				}
			default:
				records, err = store.ListAll(cmd.Context())
				if err != nil {
					return err
				}
			}
			return printRecords(cmd, ctx.flags.json, records)
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "", "Only this CEFR level")
	cmd.Flags().StringVar(&contentType, "type", "", "Only this content type (video_link or text)")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Case-sensitive search over titles and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			store, _, _, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			records, err := store.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printRecords(cmd, ctx.flags.json, records)
		},
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			store, _, _, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.flags.json {
				return writeJSON(cmd, stats)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Total", itoa(stats.Total)},
					{"Videos", itoa(stats.Videos)},
					{"Articles", itoa(stats.Text)},
					{"Video time", formatSeconds(stats.TotalDuration)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var fetch bool

	cmd := &cobra.Command{
		Use:   "transcript <video-id|url>",
		Short: "Print a video transcript from the catalog, or fetch it live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := video.ExtractID(args[0])
			if err != nil {
				return err
			}

			defer ctx.close()
			store, cfg, logger, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}

			source := "catalog"
			var text string
			if !fetch {
				rec, err := store.Get(cmd.Context(), id)
				switch {
				case err == nil && rec.Transcript != nil:
					text = *rec.Transcript
				case err != nil && !errors.Is(err, domain.ErrNotFound):
					return err
				}
			}
			if text == "" {
				source = "live"
				var ok bool
				text, ok = curator.NewVideoResolver(cfg, logger).Transcript(cmd.Context(), id)
				if !ok {
					return fmt.Errorf("%w for %s", domain.ErrTranscriptUnavailable, id)
				}
			}

			if ctx.flags.json {
				return writeJSON(cmd, map[string]string{"id": id, "source": source, "transcript": text})
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fetch, "fetch", false, "Skip the catalog and fetch captions live")
	return cmd
}
