package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/slopwatch/slopwatch/internal/domain"
	"github.com/slopwatch/slopwatch/internal/run"
)

func scanCommand() *cobra.Command {
	var (
		keywords       []string
		seeds          []string
		seedsFile      string
		trending       string
		durationFilter string
		targetCount    int
		budget         time.Duration
		minSubs        int64
		minVideos      int64
		force          bool
		mode           string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one discovery-and-classification session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := buildDeps()
			if err != nil {
				return err
			}
			defer d.close()

			opts := run.Options{
				Keywords:         keywords,
				TrendingCategory: trending,
				DurationFilter:   durationFilter,
				TargetCount:      targetCount,
				RuntimeBudget:    budget,
				MinSubscribers:   minSubs,
				MinVideos:        minVideos,
				ForceRefresh:     force,
				Mode:             classificationMode(mode),
			}
			applyConfigDefaults(&opts, d)

			seedIDs, err := collectSeeds(seeds, seedsFile, d.cfg.Discovery.Seeds)
			if err != nil {
				return err
			}
			opts.Seeds = seedIDs

			report, err := d.controller.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			printSummary(cmd, &report.Summary)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "search keywords to discover candidates from")
	cmd.Flags().StringSliceVar(&seeds, "seeds", nil, "explicit channel ids to evaluate")
	cmd.Flags().StringVar(&seedsFile, "seeds-file", "", "file with one channel id per line")
	cmd.Flags().StringVar(&trending, "trending-category", "", "trending chart category (used when no keywords are set)")
	cmd.Flags().StringVar(&durationFilter, "duration", "", "search duration filter (short, medium, long)")
	cmd.Flags().IntVar(&targetCount, "target", 0, "stop after this many results")
	cmd.Flags().DurationVar(&budget, "budget", 0, "wall-time budget for the run")
	cmd.Flags().Int64Var(&minSubs, "min-subscribers", 0, "skip channels below this subscriber count")
	cmd.Flags().Int64Var(&minVideos, "min-videos", 0, "skip channels below this video count")
	cmd.Flags().BoolVar(&force, "force", false, "re-classify channels that already have a stored result")
	cmd.Flags().StringVar(&mode, "mode", string(domain.ModeRulesThenAI), "classification mode: rules+ai or ai")

	return cmd
}

func applyConfigDefaults(opts *run.Options, d *deps) {
	if len(opts.Keywords) == 0 {
		opts.Keywords = d.cfg.Discovery.Keywords
	}
	if opts.TrendingCategory == "" {
		opts.TrendingCategory = d.cfg.Discovery.TrendingCategory
	}
	if opts.DurationFilter == "" {
		opts.DurationFilter = d.cfg.Discovery.DurationFilter
	}
	if opts.TargetCount == 0 {
		opts.TargetCount = d.cfg.Run.TargetCount
	}
	if opts.RuntimeBudget == 0 {
		opts.RuntimeBudget = d.cfg.Run.RuntimeBudget
	}
	if opts.MinSubscribers == 0 {
		opts.MinSubscribers = d.cfg.Run.MinSubscribers
	}
	if opts.MinVideos == 0 {
		opts.MinVideos = d.cfg.Run.MinVideos
	}
}

func classificationMode(s string) domain.ClassificationMode {
	if strings.EqualFold(s, string(domain.ModeAIOnly)) {
		return domain.ModeAIOnly
	}
	return domain.ModeRulesThenAI
}

func collectSeeds(flagSeeds []string, seedsFile string, configSeeds []string) ([]domain.CandidateID, error) {
	raw := append([]string{}, flagSeeds...)
	if len(raw) == 0 {
		raw = append(raw, configSeeds...)
	}

	if seedsFile != "" {
		data, err := os.ReadFile(seedsFile)
		if err != nil {
			return nil, fmt.Errorf("read seeds file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				raw = append(raw, line)
			}
		}
	}

	ids := make([]domain.CandidateID, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			ids = append(ids, domain.CandidateID(s))
		}
	}
	return ids, nil
}

func printSummary(cmd *cobra.Command, s *domain.RunSummary) {
	cmd.Printf("run %s finished in %s\n", s.RunID, s.Elapsed.Round(time.Second))
	cmd.Printf("processed: %d (slop %d, suspicious %d, okay %d)\n",
		s.Processed, s.Slop, s.Suspicious, s.Okay)
	cmd.Printf("skipped: %d existing, %d low subscribers, %d low videos, %d low velocity\n",
		s.SkippedExists, s.SkippedLowSubscribers, s.SkippedLowVideoCount, s.SkippedLowVelocity)
}
