package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/insightpost/internal/pipeline"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Fetch and generate an insight, print the post without writing it",
	RunE:  runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	res := p.Preview(cmd.Context())
	if res.State != pipeline.StateDone {
		if res.RawInsight != "" {
			fmt.Fprintln(cmd.OutOrStdout(), res.RawInsight)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", res.Document.Filename)
	fmt.Fprintln(out, res.Document.Content)
	return nil
}
