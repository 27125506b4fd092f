// Package normalize derives per-candidate metrics from raw provider data.
package normalize

import (
	"strings"
	"time"

	"github.com/slopwatch/slopwatch/internal/domain"
)

const (
	// recentWindowDays is the trailing window for recent velocity.
	recentWindowDays = 14
	hoursPerDay      = 24
)

// Metrics computes NormalizedMetrics for a channel and its sampled recent
// videos. It is a pure transform: no network, no persistence. Malformed
// durations count as zero seconds and missing fields default to zero.
func Metrics(ch domain.ChannelRecord, videos []domain.VideoRecord, now time.Time) domain.NormalizedMetrics {
	ageInDays := now.Sub(ch.PublishedAt).Hours() / hoursPerDay
	if ageInDays < 1 {
		ageInDays = 1
	}

	subscribers := ch.SubscriberCount
	if subscribers < 1 {
		subscribers = 1
	}

	recentWindow := float64(recentWindowDays)
	if ageInDays < recentWindow {
		recentWindow = ageInDays
	}

	var (
		recentUploads  int
		totalTags      int
		totalDuration  float64
		totalHashtags  int
		madeForKids    bool
		categoryCounts = map[string]int{}
	)

	cutoff := now.AddDate(0, 0, -recentWindowDays)
	for _, v := range videos {
		if v.PublishedAt.After(cutoff) {
			recentUploads++
		}
		totalTags += len(v.Tags)
		totalDuration += parseISODuration(v.DurationISO8601).Seconds()
		totalHashtags += strings.Count(v.Title, "#")
		if v.MadeForKids {
			madeForKids = true
		}
		if v.CategoryID != "" {
			categoryCounts[v.CategoryID]++
		}
	}

	m := domain.NormalizedMetrics{
		AgeInDays:        ageInDays,
		LifetimeVelocity: float64(ch.VideoCount) / ageInDays,
		RecentVelocity:   float64(recentUploads) / recentWindow,

		ViewsPerSubscriber: float64(ch.ViewCount) / float64(subscribers),
		IsMadeForKids:      madeForKids,
		DominantCategory:   modeOf(categoryCounts),
		SampledVideos:      len(videos),
	}

	if len(videos) > 0 {
		n := float64(len(videos))
		m.AverageTagCount = float64(totalTags) / n
		m.AverageDurationSeconds = totalDuration / n
		m.AverageTitleHashtags = float64(totalHashtags) / n
	}

	return m
}

// modeOf returns the most frequent key, ties broken by lexical order so the
// result is deterministic.
func modeOf(counts map[string]int) string {
	best := ""
	bestCount := 0
	for k, c := range counts {
		if c > bestCount || (c == bestCount && (best == "" || k < best)) {
			best = k
			bestCount = c
		}
	}
	return best
}

// parseISODuration parses ISO-8601 duration tokens of the shape the video
// provider emits (PT#H#M#S, optionally with a leading P#D). Anything it
// cannot make sense of parses as zero.
func parseISODuration(s string) time.Duration {
	if s == "" || s[0] != 'P' {
		return 0
	}

	var (
		total   time.Duration
		num     int64
		inTime  bool
		haveNum bool
	)

	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int64(r-'0')
			haveNum = true
		case r == 'T':
			inTime = true
			num, haveNum = 0, false
		default:
			if !haveNum {
				return 0
			}
			switch r {
			case 'D':
				total += time.Duration(num) * hoursPerDay * time.Hour
			case 'H':
				if !inTime {
					return 0
				}
				total += time.Duration(num) * time.Hour
			case 'M':
				if !inTime {
					// months are not meaningful for video durations
					return 0
				}
				total += time.Duration(num) * time.Minute
			case 'S':
				if !inTime {
					return 0
				}
				total += time.Duration(num) * time.Second
			default:
				return 0
			}
			num, haveNum = 0, false
		}
	}

	return total
}
