package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/osintdeck/osintdeck/internal/model"
)

// defaultRedditBaseURL serves the public account JSON endpoints.
const defaultRedditBaseURL = "https://www.reddit.com"

// redditListingLimit caps how many submissions and comments a lookup
// fetches. Five of each sketches an account's activity without paging.
const redditListingLimit = 5

// Reddit looks up an account through the public .json endpoints.
// This is a multi-part provider: the profile, the recent submissions,
// and the recent comments arrive as three separate emissions so clients
// can render the profile while the listings load.
type Reddit struct {
	client      *http.Client
	baseURL     string
	maxBodySize int64
	logger      *slog.Logger
}

// NewReddit creates the Reddit adapter.
func NewReddit(client *http.Client, maxBodySize int64, logger *slog.Logger) *Reddit {
	return &Reddit{
		client:      client,
		baseURL:     defaultRedditBaseURL,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name implements Provider.
func (r *Reddit) Name() string { return "reddit" }

// Topic implements Provider.
func (r *Reddit) Topic() model.Topic { return model.TopicReddit }

// redditAbout is the about.json response shape.
type redditAbout struct {
	Data struct {
		Name          string  `json:"name"`
		ID            string  `json:"id"`
		CreatedUTC    float64 `json:"created_utc"`
		LinkKarma     int     `json:"link_karma"`
		CommentKarma  int     `json:"comment_karma"`
		IsGold        bool    `json:"is_gold"`
		IsMod         bool    `json:"is_mod"`
		VerifiedEmail bool    `json:"has_verified_email"`
		IconImg       string  `json:"icon_img"`
		IsEmployee    bool    `json:"is_employee"`
		Subreddit     *struct {
			DisplayName       string `json:"display_name"`
			Title             string `json:"title"`
			PublicDescription string `json:"public_description"`
			Subscribers       int    `json:"subscribers"`
			BannerImg         string `json:"banner_img"`
			Over18            bool   `json:"over_18"`
		} `json:"subreddit"`
	} `json:"data"`
}

// redditListing is the shared shape of submitted.json and comments.json.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				// Submission fields
				Title       string  `json:"title"`
				URL         string  `json:"url"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				Selftext    string  `json:"selftext"`
				// Comment fields
				Body      string `json:"body"`
				LinkTitle string `json:"link_title"`
				LinkURL   string `json:"link_url"`
				Permalink string `json:"permalink"`
				// Shared
				CreatedUTC float64 `json:"created_utc"`
				Subreddit  string  `json:"subreddit"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search implements Provider.
func (r *Reddit) Search(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	username := req.Input
	r.logger.Debug("reddit lookup", "username", username)

	escaped := url.PathEscape(username)

	var about redditAbout
	aboutURL := fmt.Sprintf("%s/user/%s/about.json", r.baseURL, escaped)
	if perr := getJSON(ctx, r.client, aboutURL, nil, r.maxBodySize, &about); perr != nil {
		if perr.Kind == model.ErrorKindNotFound {
			perr = NewError(model.ErrorKindNotFound, "user does not exist")
		}
		emit(model.Failure(r.Name(), perr.Kind, perr.Message))
		return perr
	}
	if about.Data.Name == "" {
		perr := NewError(model.ErrorKindNotFound, "user does not exist")
		emit(model.Failure(r.Name(), perr.Kind, perr.Message))
		return perr
	}

	profile := model.RedditProfile{
		Username:      about.Data.Name,
		ID:            about.Data.ID,
		CreatedUTC:    about.Data.CreatedUTC,
		LinkKarma:     about.Data.LinkKarma,
		CommentKarma:  about.Data.CommentKarma,
		IsGold:        about.Data.IsGold,
		IsMod:         about.Data.IsMod,
		VerifiedEmail: about.Data.VerifiedEmail,
		IconImg:       about.Data.IconImg,
		IsEmployee:    about.Data.IsEmployee,
	}
	if sr := about.Data.Subreddit; sr != nil {
		profile.Subreddit = &model.RedditSubreddit{
			Name:              sr.DisplayName,
			Title:             sr.Title,
			PublicDescription: sr.PublicDescription,
			Subscribers:       sr.Subscribers,
			BannerImg:         sr.BannerImg,
			Over18:            sr.Over18,
		}
	}

	// Profile first so clients can render while listings load.
	emit(model.PartialSuccess(r.Name(), profile))

	emit(model.Progress(r.Name(), 1, 3, "Fetching submissions..."))
	submissions, perr := r.fetchSubmissions(ctx, escaped)
	if perr != nil {
		emit(model.Failure(r.Name(), perr.Kind, perr.Message))
		return perr
	}
	emit(model.PartialSuccess(r.Name(), model.RedditSubmissions{Submissions: submissions}))

	emit(model.Progress(r.Name(), 2, 3, "Fetching comments..."))
	comments, perr := r.fetchComments(ctx, escaped)
	if perr != nil {
		emit(model.Failure(r.Name(), perr.Kind, perr.Message))
		return perr
	}

	// Final part is the terminal emission for this module.
	emit(model.Success(r.Name(), model.RedditComments{Comments: comments}))
	return nil
}

// fetchSubmissions retrieves the account's recent submissions.
func (r *Reddit) fetchSubmissions(ctx context.Context, escaped string) ([]model.RedditSubmission, *Error) {
	listURL := fmt.Sprintf("%s/user/%s/submitted.json?limit=%d&sort=new", r.baseURL, escaped, redditListingLimit)

	var listing redditListing
	if perr := getJSON(ctx, r.client, listURL, nil, r.maxBodySize, &listing); perr != nil {
		return nil, perr
	}

	submissions := make([]model.RedditSubmission, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		submissions = append(submissions, model.RedditSubmission{
			Title:       d.Title,
			URL:         d.URL,
			CreatedUTC:  d.CreatedUTC,
			Score:       d.Score,
			NumComments: d.NumComments,
			Selftext:    d.Selftext,
			Subreddit:   d.Subreddit,
		})
	}
	return submissions, nil
}

// fetchComments retrieves the account's recent comments.
func (r *Reddit) fetchComments(ctx context.Context, escaped string) ([]model.RedditComment, *Error) {
	listURL := fmt.Sprintf("%s/user/%s/comments.json?limit=%d&sort=new", r.baseURL, escaped, redditListingLimit)

	var listing redditListing
	if perr := getJSON(ctx, r.client, listURL, nil, r.maxBodySize, &listing); perr != nil {
		return nil, perr
	}

	comments := make([]model.RedditComment, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		linkURL := d.LinkURL
		if linkURL == "" && d.Permalink != "" {
			linkURL = "https://reddit.com" + strings.TrimSuffix(d.Permalink, "/")
		}
		comments = append(comments, model.RedditComment{
			Body:       d.Body,
			CreatedUTC: d.CreatedUTC,
			Score:      d.Score,
			LinkTitle:  d.LinkTitle,
			LinkURL:    linkURL,
			Subreddit:  d.Subreddit,
		})
	}
	return comments, nil
}
