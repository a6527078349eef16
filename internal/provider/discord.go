package provider

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/osintdeck/osintdeck/internal/model"
)

// defaultDiscordBaseURL is the public Discord user lookup service.
const defaultDiscordBaseURL = "https://discordlookup.mesalytic.moe"

// discordEpochMillis is the Discord snowflake epoch (2015-01-01 UTC).
const discordEpochMillis = 1420070400000

// Discord looks up an account by snowflake ID. The creation time is
// decoded locally from the ID; profile details come from a public lookup
// service that fronts Discord's API.
type Discord struct {
	client      *http.Client
	baseURL     string
	maxBodySize int64
	logger      *slog.Logger
}

// NewDiscord creates the Discord adapter.
func NewDiscord(client *http.Client, maxBodySize int64, logger *slog.Logger) *Discord {
	return &Discord{
		client:      client,
		baseURL:     defaultDiscordBaseURL,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name implements Provider.
func (d *Discord) Name() string { return "discord" }

// Topic implements Provider.
func (d *Discord) Topic() model.Topic { return model.TopicDiscord }

// SnowflakeTime decodes the creation time embedded in a Discord
// snowflake: the top 42 bits are milliseconds since the Discord epoch.
func SnowflakeTime(id uint64) time.Time {
	millis := int64(id>>22) + discordEpochMillis
	return time.UnixMilli(millis).UTC()
}

// discordLookup is the subset of the lookup service response we consume.
type discordLookup struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	GlobalName string   `json:"global_name"`
	CreatedAt  string   `json:"created_at"`
	Badges     []string `json:"badges"`
	Avatar     *struct {
		Link       string `json:"link"`
		IsAnimated bool   `json:"is_animated"`
	} `json:"avatar"`
	AccentColor string `json:"accent_color"`
	Banner      *struct {
		Link  string `json:"link"`
		Color string `json:"color"`
	} `json:"banner"`
	BannerColor string `json:"banner_color"`
	Raw         struct {
		Discriminator string `json:"discriminator"`
		PublicFlags   int64  `json:"public_flags"`
		Flags         int64  `json:"flags"`
	} `json:"raw"`
}

// Search implements Provider.
func (d *Discord) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	userID := req.Input
	d.logger.Debug("discord lookup", "user_id", userID)

	var data discordLookup
	if perr := getJSON(ctx, d.client, d.baseURL+"/v1/user/"+userID, nil, d.maxBodySize, &data); perr != nil {
		if perr.Kind == model.ErrorKindNotFound {
			perr = NewError(model.ErrorKindNotFound, "Discord user %s not found", userID)
		}
		emit(model.Failure(d.Name(), perr.Kind, perr.Message))
		return perr
	}

	user := model.DiscordUser{
		UserID:        data.ID,
		Username:      data.Username,
		GlobalName:    data.GlobalName,
		CreatedAt:     data.CreatedAt,
		AccentColor:   data.AccentColor,
		BannerColor:   data.BannerColor,
		Discriminator: data.Raw.Discriminator,
		Badges:        data.Badges,
		PublicFlags:   data.Raw.PublicFlags,
		Flags:         data.Raw.Flags,
	}
	if data.Avatar != nil {
		user.AvatarURL = data.Avatar.Link
		user.AvatarAnimated = data.Avatar.IsAnimated
	}
	if data.Banner != nil {
		user.BannerURL = data.Banner.Link
		if user.BannerColor == "" {
			user.BannerColor = data.Banner.Color
		}
	}

	// The lookup service should echo the creation time, but the snowflake
	// itself is authoritative. Fill or correct from the ID.
	if id, err := strconv.ParseUint(data.ID, 10, 64); err == nil {
		user.CreatedAt = SnowflakeTime(id).Format(time.RFC3339)
	} else if id, err := strconv.ParseUint(userID, 10, 64); err == nil && user.CreatedAt == "" {
		user.CreatedAt = SnowflakeTime(id).Format(time.RFC3339)
	}

	emit(model.Success(d.Name(), user))
	return nil
}
