package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/slopwatch/slopwatch/internal/domain"
	"github.com/slopwatch/slopwatch/internal/logger"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
	requestTimeout = 30 * time.Second

	// pacing keeps bursty discovery under the API's per-second quota.
	paceInterval = 100 * time.Millisecond
	paceBurst    = 5
)

// Client talks to the YouTube Data API v3. It implements MetadataProvider,
// VideoProvider, SearchProvider, and TrendingProvider.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	pacer      *rate.Limiter
	log        logger.Logger
}

// NewClient creates a Data API client.
func NewClient(apiKey string, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		pacer:      rate.NewLimiter(rate.Every(paceInterval), paceBurst),
		log:        log,
	}
}

type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			Country     string `json:"country"`
			Thumbnails  struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
			ViewCount       string `json:"viewCount"`
		} `json:"statistics"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// FetchMetadata resolves up to MaxMetadataBatch channel ids in one call.
func (c *Client) FetchMetadata(ctx context.Context, ids []domain.CandidateID) ([]domain.ChannelRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxMetadataBatch {
		return nil, fmt.Errorf("metadata batch of %d exceeds cap of %d", len(ids), MaxMetadataBatch)
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = string(id)
	}

	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", strings.Join(idStrs, ","))
	params.Set("maxResults", strconv.Itoa(MaxMetadataBatch))

	var decoded channelListResponse
	if err := c.get(ctx, "/channels", params, &decoded); err != nil {
		return nil, err
	}

	records := make([]domain.ChannelRecord, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		records = append(records, domain.ChannelRecord{
			ID:                domain.CandidateID(item.ID),
			Title:             item.Snippet.Title,
			Description:       item.Snippet.Description,
			ThumbnailURL:      item.Snippet.Thumbnails.Default.URL,
			Country:           item.Snippet.Country,
			PublishedAt:       published,
			SubscriberCount:   parseCount(item.Statistics.SubscriberCount),
			VideoCount:        parseCount(item.Statistics.VideoCount),
			ViewCount:         parseCount(item.Statistics.ViewCount),
			UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
		})
	}
	return records, nil
}

type playlistItemsResponse struct {
	Items []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string   `json:"title"`
			PublishedAt string   `json:"publishedAt"`
			Tags        []string `json:"tags"`
			CategoryID  string   `json:"categoryId"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
		Status struct {
			MadeForKids bool `json:"madeForKids"`
		} `json:"status"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// FetchRecentVideos lists recent uploads and enriches them with a second
// videos.list call. Any failure logs and returns an empty sample.
func (c *Client) FetchRecentVideos(ctx context.Context, uploadsPlaylistID string, maxResults int) []domain.VideoRecord {
	if uploadsPlaylistID == "" {
		return nil
	}

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("playlistId", uploadsPlaylistID)
	params.Set("maxResults", strconv.Itoa(maxResults))

	var playlist playlistItemsResponse
	if err := c.get(ctx, "/playlistItems", params, &playlist); err != nil {
		c.log.Warn("recent video listing failed",
			logger.String("playlist_id", uploadsPlaylistID),
			logger.Error(err))
		return nil
	}

	videoIDs := make([]string, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		if item.ContentDetails.VideoID != "" {
			videoIDs = append(videoIDs, item.ContentDetails.VideoID)
		}
	}
	if len(videoIDs) == 0 {
		return nil
	}

	params = url.Values{}
	params.Set("part", "snippet,contentDetails,statistics,status")
	params.Set("id", strings.Join(videoIDs, ","))

	var videos videoListResponse
	if err := c.get(ctx, "/videos", params, &videos); err != nil {
		c.log.Warn("video enrichment failed",
			logger.String("playlist_id", uploadsPlaylistID),
			logger.Error(err))
		return nil
	}

	records := make([]domain.VideoRecord, 0, len(videos.Items))
	for _, item := range videos.Items {
		published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		records = append(records, domain.VideoRecord{
			ID:              item.ID,
			Title:           item.Snippet.Title,
			PublishedAt:     published,
			Tags:            item.Snippet.Tags,
			DurationISO8601: item.ContentDetails.Duration,
			ViewCount:       parseCount(item.Statistics.ViewCount),
			MadeForKids:     item.Status.MadeForKids,
			CategoryID:      item.Snippet.CategoryID,
		})
	}
	return records
}

type searchListResponse struct {
	Items []struct {
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// SearchByKeyword returns one page of channel ids matching the keyword.
func (c *Client) SearchByKeyword(ctx context.Context, keyword string, maxResults int, cursor, durationFilter string) (domain.Page, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", keyword)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("order", "date")
	if cursor != "" {
		params.Set("pageToken", cursor)
	}
	if durationFilter != "" {
		params.Set("videoDuration", durationFilter)
	}

	var decoded searchListResponse
	if err := c.get(ctx, "/search", params, &decoded); err != nil {
		return domain.Page{}, err
	}

	return domain.Page{
		IDs:        channelIDsFromSearch(decoded),
		NextCursor: decoded.NextPageToken,
	}, nil
}

// FetchTrending returns one page of channel ids from the most-popular chart.
func (c *Client) FetchTrending(ctx context.Context, category string, maxResults int, cursor string) (domain.Page, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("chart", "mostPopular")
	params.Set("maxResults", strconv.Itoa(maxResults))
	if category != "" {
		params.Set("videoCategoryId", category)
	}
	if cursor != "" {
		params.Set("pageToken", cursor)
	}

	// Trending lists videos; each video's snippet carries the owning
	// channel id, which is what discovery wants.
	var raw struct {
		Items []struct {
			Snippet struct {
				ChannelID string `json:"channelId"`
			} `json:"snippet"`
		} `json:"items"`
		NextPageToken string `json:"nextPageToken"`
	}
	if err := c.get(ctx, "/videos", params, &raw); err != nil {
		return domain.Page{}, err
	}

	ids := make([]domain.CandidateID, 0, len(raw.Items))
	seen := make(map[string]bool, len(raw.Items))
	for _, item := range raw.Items {
		id := item.Snippet.ChannelID
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, domain.CandidateID(id))
		}
	}
	return domain.Page{IDs: ids, NextCursor: raw.NextPageToken}, nil
}

func channelIDsFromSearch(resp searchListResponse) []domain.CandidateID {
	ids := make([]domain.CandidateID, 0, len(resp.Items))
	seen := make(map[string]bool, len(resp.Items))
	for _, item := range resp.Items {
		id := item.Snippet.ChannelID
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, domain.CandidateID(id))
		}
	}
	return ids
}

// get issues a paced GET against the Data API and decodes the payload.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return fmt.Errorf("pacer: %w", err)
	}

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return &domain.ProviderError{Provider: "youtube" + path, Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
