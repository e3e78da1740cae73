package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"content-curator/pkg/domain"
	"content-curator/pkg/httpclient"
	"content-curator/pkg/ingest"
)

func newAddFeedCommand(ctx *commandContext) *cobra.Command {
	var kind, level, tags string
	var maxItems int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "add-feed <feed-url|sitemap-url|file>",
		Short: "Curate every new item of a feed, sitemap, listing page or URL list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cur, cfg, logger, err := ctx.curatorFor(cmd.Context())
			if err != nil {
				return err
			}

			client := httpclient.NewClient(httpclient.BrowserClient,
				httpclient.WithTimeout(cfg.HTTPTimeout()),
				httpclient.WithUserAgent(cfg.HTTP.UserAgent))
			sources := ingest.DefaultSources(client, logger)

			summary, err := ingest.New(cur, sources, logger).IngestFeed(cmd.Context(), ingest.FeedRequest{
				Location: args[0],
				Kind:     domain.ContentType(kind),
				Level:    level,
				Tags:     domain.ParseTagList(tags),
				Max:      maxItems,
				DryRun:   dryRun,
			})
			if err != nil {
				return err
			}
			return reportSummary(cmd, ctx.flags.json, summary)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Content kind for every item: video_link or text (default: inferred per URL)")
	cmd.Flags().StringVarP(&level, "level", "l", "", "CEFR level (A1, A2, B1, B2, C1, C2)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma-separated topic tags")
	cmd.Flags().IntVar(&maxItems, "max", 0, "Curate at most this many new items (0 means all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report what would be inserted")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "batch <file.json>",
		Short: "Curate every item of a JSON batch file",
		Long: `Curate every item of a JSON batch file.

The file holds an array of items, or a single item:
  [{"type": "video", "url": "https://youtu.be/...", "level": "A2", "tags": ["food"]}]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := ingest.LoadBatch(args[0])
			if err != nil {
				return err
			}

			defer ctx.close()
			cur, _, logger, err := ctx.curatorFor(cmd.Context())
			if err != nil {
				return err
			}

			summary, err := ingest.New(cur, nil, logger).RunBatch(cmd.Context(), items, dryRun)
			if err != nil {
				return err
			}
			return reportSummary(cmd, ctx.flags.json, summary)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check items against the catalog without fetching or inserting")
	return cmd
}

// reportSummary prints a run summary. Any failed item makes the command fail.
func reportSummary(cmd *cobra.Command, asJSON bool, summary *ingest.Summary) error {
	if asJSON {
		if err := writeJSON(cmd, summary); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		if len(summary.Items) > 0 {
			rows := make([][]string, 0, len(summary.Items))
			for i, item := range summary.Items {
				detail := item.Title
				if item.Error != "" {
					detail = item.Error
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d/%d", i+1, len(summary.Items)),
					string(item.Status),
					item.ID,
					truncate(item.URL, maxTitleWidth),
					truncate(detail, maxTitleWidth),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Status", "ID", "URL", "Detail"}, rows, []columnAlignment{alignRight}))
		}
		if summary.Discovered > 0 {
			fmt.Fprintf(out, "Discovered %d, skipped %d\n", summary.Discovered, summary.Skipped)
		}
		line := fmt.Sprintf("Summary: %d inserted, %d duplicate, %d failed", summary.Inserted, summary.Duplicates, summary.Failed)
		if summary.Planned > 0 {
			line += fmt.Sprintf(", %d would insert", summary.Planned)
		}
		fmt.Fprintln(out, line)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d item(s) failed", summary.Failed)
	}
	return nil
}
