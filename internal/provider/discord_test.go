package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/osintdeck/osintdeck/internal/model"
)

func TestSnowflakeTime(t *testing.T) {
	t.Parallel()

	// 175928847299117063 >> 22 = 41944705796 ms after the Discord epoch,
	// which is 2016-04-30T11:18:25.796Z.
	got := SnowflakeTime(175928847299117063)
	want := time.Date(2016, 4, 30, 11, 18, 25, 796_000_000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("SnowflakeTime() = %v, want %v", got, want)
	}
}

func TestDiscordSearch(t *testing.T) {
	t.Parallel()

	t.Run("normalizes the lookup response and derives created_at", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/user/175928847299117063" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			_, _ = w.Write([]byte(`{
				"id": "175928847299117063",
				"username": "nelly",
				"global_name": "Nelly",
				"badges": ["HOUSE_BRAVERY"],
				"avatar": {"link": "https://cdn.discordapp.com/avatars/175928847299117063/abc.png", "is_animated": false},
				"banner": {"link": "", "color": "#3498db"},
				"raw": {"discriminator": "0", "public_flags": 64, "flags": 64}
			}`))
		}))
		defer srv.Close()

		d := NewDiscord(srv.Client(), 1<<20, testLogger())
		d.baseURL = srv.URL

		rec := &recorder{}
		if err := d.Search(context.Background(), request(model.TopicDiscord, "175928847299117063", ""), rec.emit); err != nil {
			t.Fatalf("Search() error = %v", err)
		}

		user := rec.terminal(t).Payload.(model.DiscordUser)
		if user.Username != "nelly" || user.GlobalName != "Nelly" {
			t.Errorf("user = %+v", user)
		}
		// The snowflake is authoritative for created_at even when the
		// upstream omits it.
		if user.CreatedAt != "2016-04-30T11:18:25Z" {
			t.Errorf("CreatedAt = %q, want 2016-04-30T11:18:25Z", user.CreatedAt)
		}
		if user.BannerColor != "#3498db" {
			t.Errorf("BannerColor = %q", user.BannerColor)
		}
		if user.PublicFlags != 64 {
			t.Errorf("PublicFlags = %d, want 64", user.PublicFlags)
		}
	})

	t.Run("unknown snowflake maps to not_found failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		d := NewDiscord(srv.Client(), 1<<20, testLogger())
		d.baseURL = srv.URL

		rec := &recorder{}
		if err := d.Search(context.Background(), request(model.TopicDiscord, "99999999999999999", ""), rec.emit); err == nil {
			t.Fatal("Search() error = nil, want error")
		}
		if out := rec.terminal(t); out.ErrorKind != model.ErrorKindNotFound {
			t.Errorf("error kind = %v, want not_found", out.ErrorKind)
		}
	})
}
