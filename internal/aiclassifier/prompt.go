package aiclassifier

import (
	"fmt"
	"strings"

	"github.com/slopwatch/slopwatch/internal/domain"
)

const (
	maxDescriptionChars = 500
	maxPromptVideos     = 10
	maxPromptTags       = 5
)

// buildPrompt renders the structured classification prompt for one
// candidate. The provider is asked for a strict JSON object so the response
// can be decoded into aiResponse.
func buildPrompt(ch domain.ChannelRecord, videos []domain.VideoRecord, m domain.NormalizedMetrics) string {
	var b strings.Builder

	b.WriteString("You are a content-quality analyst. Classify the following video channel as SLOP (mass-produced, low-effort, or deceptive content), SUSPICIOUS, or OKAY.\n\n")

	fmt.Fprintf(&b, "Channel title: %s\n", ch.Title)
	fmt.Fprintf(&b, "Description: %s\n", truncate(ch.Description, maxDescriptionChars))
	if m.DominantCategory != "" {
		fmt.Fprintf(&b, "Dominant category: %s\n", m.DominantCategory)
	}
	fmt.Fprintf(&b, "Subscribers: %d, total videos: %d, total views: %d\n",
		ch.SubscriberCount, ch.VideoCount, ch.ViewCount)
	fmt.Fprintf(&b, "Channel age: %.0f days, lifetime velocity: %.2f uploads/day, recent velocity: %.2f uploads/day\n",
		m.AgeInDays, m.LifetimeVelocity, m.RecentVelocity)
	fmt.Fprintf(&b, "Views per subscriber: %.2f, avg tags per video: %.1f, avg duration: %.0fs\n",
		m.ViewsPerSubscriber, m.AverageTagCount, m.AverageDurationSeconds)

	if len(videos) > 0 {
		b.WriteString("\nRecent videos:\n")
		for i, v := range videos {
			if i >= maxPromptVideos {
				break
			}
			fmt.Fprintf(&b, "- %q (duration %s, %d views", v.Title, v.DurationISO8601, v.ViewCount)
			if len(v.Tags) > 0 {
				tags := v.Tags
				if len(tags) > maxPromptTags {
					tags = tags[:maxPromptTags]
				}
				fmt.Fprintf(&b, ", tags: %s", strings.Join(tags, ", "))
			}
			b.WriteString(")\n")
		}
	}

	b.WriteString(`
Respond with ONLY a JSON object, no prose and no code fences, matching:
{
  "classification": "SLOP" | "SUSPICIOUS" | "OKAY",
  "confidence": <0-100>,
  "slop_score": <0-100>,
  "slop_type": "KIDS_CONTENT" | "AI_GENERATED" | "CLICKBAIT" | "REUPLOAD" | "ENGAGEMENT_BAIT" | "OTHER" | null,
  "reasoning": "<one or two sentences>",
  "channel_signals": {"mass_produced": <bool>, "deceptive_branding": <bool>},
  "content_signals": {"repetitive_titles": <bool>, "engagement_bait": <bool>}
}
`)

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
