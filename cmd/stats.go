package cmd

import (
	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/domain"
)

func statsCommand() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stored classification counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildStoreDeps()
			if err != nil {
				return err
			}
			defer d.close()

			counts, err := d.repo.CountByClassification(cmd.Context())
			if err != nil {
				return err
			}

			total := 0
			for _, n := range counts {
				total += n
			}
			cmd.Printf("stored channels: %d\n", total)
			cmd.Printf("  slop:       %d\n", counts[domain.ClassificationSlop])
			cmd.Printf("  suspicious: %d\n", counts[domain.ClassificationSuspicious])
			cmd.Printf("  okay:       %d\n", counts[domain.ClassificationOkay])

			if recent > 0 {
				results, err := d.repo.Recent(cmd.Context(), recent)
				if err != nil {
					return err
				}
				cmd.Println("\nmost recent:")
				for _, r := range results {
					cmd.Printf("  %-30s %-10s score=%.0f method=%s\n",
						r.Title, r.Classification, r.SlopScore, r.Method)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 0, "also list the N most recent results")
	return cmd
}
