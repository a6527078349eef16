package provider

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/osintdeck/osintdeck/internal/model"
)

// Input validation patterns. Go's regexp has no lookarounds, so the
// no-leading/trailing-hyphen rules are written structurally.
var (
	// domainPattern accepts registered names like "example.com" or
	// "sub.example.co.uk". Each label is 1-63 chars, no leading or
	// trailing hyphen, and the TLD is alphabetic.
	domainPattern = regexp.MustCompile(`^([A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z]{2,63}$`)

	// usernamePattern is deliberately loose: platforms disagree on
	// charsets, so we only reject whitespace and control characters.
	usernamePattern = regexp.MustCompile(`^[^\s]{1,80}$`)

	// emailPattern matches the shape the Google lookup accepts.
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

	// snowflakePattern matches Discord user IDs: 17-20 decimal digits.
	snowflakePattern = regexp.MustCompile(`^[0-9]{17,20}$`)

	// tiktokVideoPattern extracts the numeric video ID from a video URL.
	tiktokVideoPattern = regexp.MustCompile(`tiktok\.com/.*/(\d+)`)
)

// ValidateInput checks a request's input against its topic's rules.
// It returns a *Error with ErrorKindInvalidInput describing the problem,
// or nil when the input is acceptable. Validation runs before any
// provider dispatch, so an invalid request never touches the network.
func ValidateInput(req model.SearchRequest) *Error {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return NewError(model.ErrorKindInvalidInput, "empty input")
	}

	switch req.Topic {
	case model.TopicDomain:
		if !domainPattern.MatchString(input) {
			return NewError(model.ErrorKindInvalidInput, "invalid domain format")
		}
	case model.TopicUsername, model.TopicGitHub, model.TopicReddit:
		if !usernamePattern.MatchString(input) {
			return NewError(model.ErrorKindInvalidInput, "invalid username format")
		}
	case model.TopicMastodon:
		if req.SearchType == "instance" {
			if !domainPattern.MatchString(input) {
				return NewError(model.ErrorKindInvalidInput, "invalid instance domain")
			}
		} else if !usernamePattern.MatchString(input) {
			return NewError(model.ErrorKindInvalidInput, "invalid username format")
		}
	case model.TopicTikTok:
		if req.SearchType == "profile" {
			if !usernamePattern.MatchString(input) {
				return NewError(model.ErrorKindInvalidInput, "invalid username format")
			}
		} else if tiktokVideoPattern.FindStringSubmatch(input) == nil {
			return NewError(model.ErrorKindInvalidInput, "invalid TikTok URL format")
		}
	case model.TopicDiscord:
		if !snowflakePattern.MatchString(input) {
			return NewError(model.ErrorKindInvalidInput, "invalid Discord user ID")
		}
	case model.TopicGoogle:
		if !emailPattern.MatchString(input) {
			return NewError(model.ErrorKindInvalidInput, "invalid email format")
		}
	case model.TopicImage:
		u, err := url.Parse(input)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewError(model.ErrorKindInvalidInput, "invalid image URL")
		}
	default:
		return NewError(model.ErrorKindInvalidInput, "unknown topic %q", req.Topic)
	}

	return nil
}
