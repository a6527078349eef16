package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/osintdeck/osintdeck/internal/model"
)

const (
	// defaultTikTokProfileBaseURL proxies TikTok profile lookups. Direct
	// scraping is blocked by bot detection on the official site.
	defaultTikTokProfileBaseURL = "https://nopean.click"

	// tiktokTimestampBits is the width of the creation-time prefix in a
	// TikTok video ID.
	tiktokTimestampBits = 31
)

// TikTok serves two search types: "video" (decode the creation time
// embedded in a video URL, done entirely offline) and "profile" (account
// metadata via the lookup proxy).
type TikTok struct {
	client      *http.Client
	baseURL     string
	maxBodySize int64
	logger      *slog.Logger
}

// NewTikTok creates the TikTok adapter.
func NewTikTok(client *http.Client, maxBodySize int64, logger *slog.Logger) *TikTok {
	return &TikTok{
		client:      client,
		baseURL:     defaultTikTokProfileBaseURL,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name implements Provider.
func (t *TikTok) Name() string { return "tiktok" }

// Topic implements Provider.
func (t *TikTok) Topic() model.Topic { return model.TopicTikTok }

// Search implements Provider.
func (t *TikTok) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	if req.SearchType == "video" {
		return t.searchVideo(req.Input, emit)
	}
	return t.searchProfile(ctx, req.Input, emit)
}

// searchVideo decodes the creation timestamp from a video URL. The top
// 31 bits of the numeric video ID are a unix timestamp.
func (t *TikTok) searchVideo(videoURL string, emit EmitFunc) error {
	match := tiktokVideoPattern.FindStringSubmatch(videoURL)
	if match == nil {
		perr := NewError(model.ErrorKindInvalidInput, "no video ID found in URL")
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}

	videoID, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		perr := NewError(model.ErrorKindInvalidInput, "video ID %q is not numeric", match[1])
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}

	binary := strconv.FormatInt(videoID, 2)
	if len(binary) < tiktokTimestampBits {
		perr := NewError(model.ErrorKindInvalidInput, "video ID %d is too short to carry a timestamp", videoID)
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}

	unix, err := strconv.ParseInt(binary[:tiktokTimestampBits], 2, 64)
	if err != nil {
		perr := NewError(model.ErrorKindInternal, "decode timestamp: %v", err)
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}

	created := time.Unix(unix, 0).UTC()
	emit(model.Success(t.Name(), model.TikTokVideo{
		VideoID:      videoID,
		Binary:       binary,
		Timestamp:    fmt.Sprintf("%d", unix),
		CreationISO:  created.Format(time.RFC3339),
		CreationUnix: unix,
	}))
	return nil
}

// tiktokProfileResponse is the lookup proxy's response shape.
type tiktokProfileResponse struct {
	User struct {
		UniqueID       string `json:"uniqueId"`
		Nickname       string `json:"nickname"`
		Signature      string `json:"signature"`
		AvatarLarger   string `json:"avatarLarger"`
		Verified       bool   `json:"verified"`
		PrivateAccount bool   `json:"privateAccount"`
	} `json:"user"`
	Stats struct {
		FollowerCount  int64 `json:"followerCount"`
		FollowingCount int64 `json:"followingCount"`
		VideoCount     int64 `json:"videoCount"`
		HeartCount     int64 `json:"heartCount"`
	} `json:"stats"`
}

// searchProfile fetches account metadata through the lookup proxy.
func (t *TikTok) searchProfile(ctx context.Context, username string, emit EmitFunc) error {
	t.logger.Debug("tiktok profile lookup", "username", username)

	body, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		perr := NewError(model.ErrorKindInternal, "encode request: %v", err)
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		perr := NewError(model.ErrorKindInternal, "build request: %v", err)
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}
	req.Header.Set("Content-Type", "application/json")
	// The proxy rejects requests without a browser-looking origin.
	req.Header.Set("Origin", "https://www.tiktok.com")

	resp, err := t.client.Do(req)
	if err != nil {
		perr := AsError(err)
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind := classifyStatus(resp.StatusCode)
		perr := NewError(kind, "profile lookup returned status %d", resp.StatusCode)
		if kind == model.ErrorKindNotFound {
			perr = NewError(kind, "TikTok user %q not found", username)
		}
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}

	var data tiktokProfileResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, t.maxBodySize)).Decode(&data); err != nil {
		perr := NewError(model.ErrorKindUpstream, "decode response: %v", err)
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}
	if data.User.UniqueID == "" {
		perr := NewError(model.ErrorKindNotFound, "TikTok user %q not found", username)
		emit(model.Failure(t.Name(), perr.Kind, perr.Message))
		return perr
	}

	emit(model.Success(t.Name(), model.TikTokProfile{
		Username:       data.User.UniqueID,
		Nickname:       data.User.Nickname,
		Signature:      data.User.Signature,
		AvatarURL:      data.User.AvatarLarger,
		FollowerCount:  data.Stats.FollowerCount,
		FollowingCount: data.Stats.FollowingCount,
		VideoCount:     data.Stats.VideoCount,
		HeartCount:     data.Stats.HeartCount,
		Verified:       data.User.Verified,
		Private:        data.User.PrivateAccount,
	}))
	return nil
}
