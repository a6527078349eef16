package provider

import (
	"testing"

	"github.com/osintdeck/osintdeck/internal/model"
)

func TestValidateInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		topic      model.Topic
		input      string
		searchType string
		wantOK     bool
	}{
		{name: "valid domain", topic: model.TopicDomain, input: "example.com", wantOK: true},
		{name: "subdomain", topic: model.TopicDomain, input: "sub.example.co.uk", wantOK: true},
		{name: "domain with scheme rejected", topic: model.TopicDomain, input: "https://example.com", wantOK: false},
		{name: "bare label rejected", topic: model.TopicDomain, input: "localhost", wantOK: false},
		{name: "leading hyphen label rejected", topic: model.TopicDomain, input: "-bad.example.com", wantOK: false},

		{name: "valid username", topic: model.TopicGitHub, input: "octocat", wantOK: true},
		{name: "username with spaces rejected", topic: model.TopicGitHub, input: "two words", wantOK: false},
		{name: "empty username rejected", topic: model.TopicReddit, input: "", wantOK: false},

		{name: "valid email", topic: model.TopicGoogle, input: "user@example.com", wantOK: true},
		{name: "email missing at sign rejected", topic: model.TopicGoogle, input: "userexample.com", wantOK: false},

		{name: "valid snowflake", topic: model.TopicDiscord, input: "80351110224678912", wantOK: true},
		{name: "snowflake too short rejected", topic: model.TopicDiscord, input: "12345", wantOK: false},
		{name: "snowflake with letters rejected", topic: model.TopicDiscord, input: "80351110224678a12", wantOK: false},

		{name: "mastodon username", topic: model.TopicMastodon, input: "gargron", searchType: "username", wantOK: true},
		{name: "mastodon instance domain", topic: model.TopicMastodon, input: "mastodon.social", searchType: "instance", wantOK: true},
		{name: "mastodon instance non-domain rejected", topic: model.TopicMastodon, input: "not a domain", searchType: "instance", wantOK: false},

		{name: "tiktok profile username", topic: model.TopicTikTok, input: "charlidamelio", searchType: "profile", wantOK: true},
		{name: "tiktok video url", topic: model.TopicTikTok, input: "https://www.tiktok.com/@user/video/7106594312292453675", searchType: "video", wantOK: true},
		{name: "tiktok video without id rejected", topic: model.TopicTikTok, input: "https://www.tiktok.com/@user", searchType: "video", wantOK: false},

		{name: "image http url", topic: model.TopicImage, input: "http://example.com/photo.jpg", wantOK: true},
		{name: "image https url", topic: model.TopicImage, input: "https://example.com/photo.jpg", wantOK: true},
		{name: "image ftp url rejected", topic: model.TopicImage, input: "ftp://example.com/photo.jpg", wantOK: false},
		{name: "image url without host rejected", topic: model.TopicImage, input: "https:///photo.jpg", wantOK: false},

		{name: "whatsmyname username", topic: model.TopicUsername, input: "jdoe", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := request(tt.topic, tt.input, tt.searchType)
			perr := ValidateInput(req)
			if tt.wantOK && perr != nil {
				t.Fatalf("ValidateInput(%q) = %v, want nil", tt.input, perr)
			}
			if !tt.wantOK {
				if perr == nil {
					t.Fatalf("ValidateInput(%q) = nil, want error", tt.input)
				}
				if perr.Kind != model.ErrorKindInvalidInput {
					t.Errorf("error kind = %v, want %v", perr.Kind, model.ErrorKindInvalidInput)
				}
			}
		})
	}
}
