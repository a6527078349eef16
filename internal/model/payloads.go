package model

// Per-module payload structs. Each provider adapter normalizes its upstream
// response into one of these at the boundary; nothing downstream touches
// raw upstream JSON.

// WhoisRecord is the normalized registration data for a domain, assembled
// from the registry's RDAP response.
type WhoisRecord struct {
	Domain      string   `json:"domain"`
	Handle      string   `json:"handle,omitempty"`
	Registrar   string   `json:"registrar,omitempty"`
	Statuses    []string `json:"statuses,omitempty"`
	Nameservers []string `json:"nameservers,omitempty"`
	Created     string   `json:"created,omitempty"`
	Updated     string   `json:"updated,omitempty"`
	Expires     string   `json:"expires,omitempty"`
	DNSSEC      bool     `json:"dnssec"`
}

// GitHubRepo is one repository in a GitHub profile lookup.
type GitHubRepo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Fork        bool   `json:"fork"`
	HTMLURL     string `json:"html_url"`
	CreatedAt   string `json:"created_at,omitempty"`
	PushedAt    string `json:"pushed_at,omitempty"`
}

// GitHubProfile is the normalized GitHub account data.
type GitHubProfile struct {
	Login       string       `json:"login"`
	ID          int64        `json:"id"`
	Name        string       `json:"name,omitempty"`
	Company     string       `json:"company,omitempty"`
	Blog        string       `json:"blog,omitempty"`
	Location    string       `json:"location,omitempty"`
	Email       string       `json:"email,omitempty"`
	Bio         string       `json:"bio,omitempty"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	PublicRepos int          `json:"public_repos"`
	PublicGists int          `json:"public_gists"`
	Followers   int          `json:"followers"`
	Following   int          `json:"following"`
	CreatedAt   string       `json:"created_at,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
	Repos       []GitHubRepo `json:"repos,omitempty"`
}

// DiscordUser is the normalized Discord account data. CreatedAt is derived
// locally from the snowflake ID, so it is present even when the lookup
// upstream omits it.
type DiscordUser struct {
	UserID         string   `json:"user_id"`
	Username       string   `json:"username"`
	GlobalName     string   `json:"global_name,omitempty"`
	CreatedAt      string   `json:"created_at"`
	AvatarURL      string   `json:"avatar_url,omitempty"`
	AvatarAnimated bool     `json:"is_avatar_animated"`
	AccentColor    string   `json:"accent_color,omitempty"`
	BannerColor    string   `json:"banner_color,omitempty"`
	BannerURL      string   `json:"banner_url,omitempty"`
	Discriminator  string   `json:"discriminator,omitempty"`
	Badges         []string `json:"badges,omitempty"`
	PublicFlags    int64    `json:"public_flags"`
	Flags          int64    `json:"flags"`
}

// RedditSubreddit is the user-subreddit block of a Reddit profile.
type RedditSubreddit struct {
	Name              string `json:"name,omitempty"`
	Title             string `json:"title,omitempty"`
	PublicDescription string `json:"public_description,omitempty"`
	Subscribers       int    `json:"subscribers"`
	BannerImg         string `json:"banner_img,omitempty"`
	Over18            bool   `json:"over_18"`
}

// RedditProfile is the first partial payload of a Reddit lookup.
type RedditProfile struct {
	Username      string           `json:"username"`
	ID            string           `json:"id"`
	CreatedUTC    float64          `json:"created_utc"`
	LinkKarma     int              `json:"link_karma"`
	CommentKarma  int              `json:"comment_karma"`
	IsGold        bool             `json:"is_gold"`
	IsMod         bool             `json:"is_mod"`
	VerifiedEmail bool             `json:"has_verified_email"`
	IconImg       string           `json:"icon_img,omitempty"`
	IsEmployee    bool             `json:"is_employee"`
	Subreddit     *RedditSubreddit `json:"subreddit,omitempty"`
}

// RedditSubmission is one submission in a Reddit lookup.
type RedditSubmission struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Selftext    string  `json:"selftext,omitempty"`
	Subreddit   string  `json:"subreddit"`
}

// RedditComment is one comment in a Reddit lookup.
type RedditComment struct {
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
	Score      int     `json:"score"`
	LinkTitle  string  `json:"link_title,omitempty"`
	LinkURL    string  `json:"link_url,omitempty"`
	Subreddit  string  `json:"subreddit"`
}

// RedditSubmissions is the second partial payload of a Reddit lookup.
type RedditSubmissions struct {
	Submissions []RedditSubmission `json:"submissions"`
}

// RedditComments is the third partial payload of a Reddit lookup.
type RedditComments struct {
	Comments []RedditComment `json:"comments"`
}

// MastodonField is one verified-metadata row on a Mastodon profile.
type MastodonField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MastodonAccount is the normalized Mastodon account data from the
// directory search API.
type MastodonAccount struct {
	UserID         string          `json:"user_id"`
	ProfileURL     string          `json:"profile_url"`
	Locked         bool            `json:"locked"`
	Username       string          `json:"username"`
	Acct           string          `json:"acct"`
	DisplayName    string          `json:"display_name,omitempty"`
	CreatedAt      string          `json:"created_at,omitempty"`
	Bot            bool            `json:"bot"`
	Discoverable   bool            `json:"discoverable"`
	FollowersCount int             `json:"followers_count"`
	FollowingCount int             `json:"following_count"`
	StatusesCount  int             `json:"statuses_count"`
	LastStatusAt   string          `json:"last_status_at,omitempty"`
	Group          bool            `json:"group"`
	Bio            string          `json:"bio,omitempty"`
	Fields         []MastodonField `json:"fields,omitempty"`
	Avatar         string          `json:"avatar,omitempty"`
}

// MastodonInstance is the normalized data for a Mastodon instance lookup.
type MastodonInstance struct {
	Instance            string           `json:"instance"`
	Title               string           `json:"title,omitempty"`
	Description         string           `json:"description,omitempty"`
	DetailedDescription string           `json:"detailed_description,omitempty"`
	Email               string           `json:"email,omitempty"`
	Thumbnail           string           `json:"thumbnail,omitempty"`
	Languages           []string         `json:"languages,omitempty"`
	Registrations       bool             `json:"registrations"`
	ApprovalRequired    bool             `json:"approval_required"`
	Admin               *MastodonAccount `json:"admin_info,omitempty"`
}

// MastodonMatch is one instance on which a username was found.
type MastodonMatch struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
}

// MastodonAPIResult is the partial payload from the directory search API.
type MastodonAPIResult struct {
	APIData *MastodonAccount `json:"api_data,omitempty"`
}

// MastodonInstancesResult is the partial payload from the instance sweep.
type MastodonInstancesResult struct {
	Instances []MastodonMatch `json:"instances,omitempty"`
}

// TikTokVideo is the timestamp analysis of a TikTok video URL. The
// creation time lives in the top 31 bits of the video ID.
type TikTokVideo struct {
	VideoID      int64  `json:"video_id"`
	Binary       string `json:"binary"`
	Timestamp    string `json:"timestamp"`
	CreationISO  string `json:"creation_iso"`
	CreationUnix int64  `json:"creation_unix"`
}

// TikTokProfile is the normalized TikTok account data.
type TikTokProfile struct {
	Username       string `json:"username"`
	Nickname       string `json:"nickname,omitempty"`
	Signature      string `json:"signature,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	VideoCount     int64  `json:"video_count"`
	HeartCount     int64  `json:"heart_count"`
	Verified       bool   `json:"verified"`
	Private        bool   `json:"private"`
}

// GoogleAccount is the normalized Google account data from the external
// account-lookup collaborator.
type GoogleAccount struct {
	Email        string   `json:"email"`
	GaiaID       string   `json:"gaia_id,omitempty"`
	Name         string   `json:"name,omitempty"`
	ProfilePhoto string   `json:"profile_photo,omitempty"`
	LastEdit     string   `json:"last_edit,omitempty"`
	Services     []string `json:"services,omitempty"`
}

// EXIFTag is one extracted EXIF entry.
type EXIFTag struct {
	IFD   string `json:"ifd"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// EXIFReport is the metadata extracted from an image URL.
type EXIFReport struct {
	URL         string    `json:"url"`
	TagCount    int       `json:"tag_count"`
	HasGPS      bool      `json:"has_gps"`
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	CameraMake  string    `json:"camera_make,omitempty"`
	CameraModel string    `json:"camera_model,omitempty"`
	Software    string    `json:"software,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	Taken       string    `json:"taken,omitempty"`
	Tags        []EXIFTag `json:"tags,omitempty"`
}

// Subdomains is the certificate-transparency payload: the deduplicated,
// sorted names seen in issued certificates for a domain.
type Subdomains []string
