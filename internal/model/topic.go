package model

import (
	"errors"
	"fmt"
)

// ErrUnknownTopic is returned when a topic string does not name a known topic.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic identifies one searchable identifier class. Each topic maps to one
// session-channel namespace and to a fixed set of provider adapters.
//
// Design decision: We use a string type rather than iota constants because
// topics appear verbatim in the wire protocol (the /ws/:topic route and the
// search_<topic> event names), so a string representation is needed anyway
// and round-trips without a lookup table.
type Topic string

const (
	// TopicDomain looks up WHOIS registration data and certificate
	// transparency subdomains for a registered domain.
	TopicDomain Topic = "domain"

	// TopicUsername scans the site catalog for accounts with a given
	// username. This is the large fan-out topic.
	TopicUsername Topic = "username"

	// TopicGitHub looks up a GitHub account profile and repositories.
	TopicGitHub Topic = "github"

	// TopicReddit looks up a Reddit account profile, submissions, and
	// comments. The three parts arrive as separate partial results.
	TopicReddit Topic = "reddit"

	// TopicMastodon looks up a Mastodon account (search_type "username")
	// or a Mastodon instance (search_type "instance").
	TopicMastodon Topic = "mastodon"

	// TopicTikTok extracts the creation timestamp from a TikTok video URL
	// (search_type "video") or looks up a profile (search_type "profile").
	TopicTikTok Topic = "tiktok"

	// TopicDiscord looks up a Discord account by snowflake ID.
	TopicDiscord Topic = "discord"

	// TopicGoogle looks up a Google account by email address.
	TopicGoogle Topic = "google"

	// TopicImage extracts EXIF metadata from an image URL.
	TopicImage Topic = "image"
)

// Topics returns all known topics in a stable order.
func Topics() []Topic {
	return []Topic{
		TopicDomain,
		TopicUsername,
		TopicGitHub,
		TopicReddit,
		TopicMastodon,
		TopicTikTok,
		TopicDiscord,
		TopicGoogle,
		TopicImage,
	}
}

// ParseTopic converts a wire string into a Topic.
// It returns ErrUnknownTopic (wrapped with the offending value) for
// anything that is not a known topic.
func ParseTopic(s string) (Topic, error) {
	t := Topic(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTopic, s)
	}
	return t, nil
}

// Valid reports whether the topic is one of the known topics.
func (t Topic) Valid() bool {
	switch t {
	case TopicDomain, TopicUsername, TopicGitHub, TopicReddit,
		TopicMastodon, TopicTikTok, TopicDiscord, TopicGoogle, TopicImage:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the topic.
func (t Topic) String() string {
	return string(t)
}

// SearchEvent returns the client event name that starts a search on this
// topic channel (e.g. "search_domain").
func (t Topic) SearchEvent() string {
	return "search_" + string(t)
}

// CancelEvent returns the client event name that cancels the in-flight
// search on this topic channel (e.g. "cancel_search_domain").
func (t Topic) CancelEvent() string {
	return "cancel_search_" + string(t)
}
