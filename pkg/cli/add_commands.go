package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"content-curator/pkg/curator"
	"content-curator/pkg/domain"
)

type addKind struct {
	use   string
	short string
	kind  domain.ContentType
}

var (
	addYouTube = addKind{use: "add-youtube <url>", short: "Curate a YouTube video", kind: domain.ContentTypeVideoLink}
	addArticle = addKind{use: "add-article <url>", short: "Curate a web article", kind: domain.ContentTypeText}
)

type outcomeView struct {
	Status       curator.Status        `json:"status"`
	Record       *domain.ContentRecord `json:"record"`
	ArtifactPath string                `json:"artifact_path,omitempty"`
}

func newAddCommand(ctx *commandContext, k addKind) *cobra.Command {
	var level string
	var tags string

	cmd := &cobra.Command{
		Use:   k.use,
		Short: k.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cur, _, _, err := ctx.curatorFor(cmd.Context())
			if err != nil {
				return err
			}

			outcome, err := cur.Curate(cmd.Context(), curator.Request{
				URL:   args[0],
				Level: level,
				Tags:  domain.ParseTagList(tags),
				Kind:  k.kind,
			})
			if err != nil {
				return err
			}

			if ctx.flags.json {
				return writeJSON(cmd, outcomeView{Status: outcome.Status, Record: outcome.Record, ArtifactPath: outcome.ArtifactPath})
			}
			printOutcome(cmd, outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "", "CEFR level (A1, A2, B1, B2, C1, C2)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma-separated topic tags")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome *curator.Outcome) {
	out := cmd.OutOrStdout()
	rec := outcome.Record
	if outcome.Status == curator.StatusDuplicate {
		fmt.Fprintf(out, "Already in catalog: %s (%s)\n", rec.ID, rec.Title)
		return
	}

	fmt.Fprintf(out, "Added %s %s\n", rec.Type, rec.ID)
	fmt.Fprintf(out, "  Title:    %s\n", rec.Title)
	fmt.Fprintf(out, "  Level:    %s\n", rec.Level)
	if rec.Channel != nil {
		fmt.Fprintf(out, "  Channel:  %s\n", *rec.Channel)
	}
	if rec.Duration != nil {
		fmt.Fprintf(out, "  Duration: %s\n", formatDuration(rec.Duration))
	}
	if rec.Type == domain.ContentTypeVideoLink {
		fmt.Fprintf(out, "  Transcript: %s\n", yesNo(rec.Transcript != nil))
	}
	if outcome.ArtifactPath != "" {
		fmt.Fprintf(out, "  Saved:    %s\n", outcome.ArtifactPath)
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
