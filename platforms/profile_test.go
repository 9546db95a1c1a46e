package platforms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func profileFetcher(t *testing.T, platformID string, handler http.HandlerFunc) (*Fetcher, func()) {
	t.Helper()
	ts := httptest.NewServer(handler)
	registry := testRegistry()
	if err := registry.Override(platformID, "", "", ts.URL); err != nil {
		t.Fatalf("Override failed: %v", err)
	}
	return NewFetcher(registry, 5*time.Second), ts.Close
}

func TestFetchProfile_X(t *testing.T) {
	fetcher, cleanup := profileFetcher(t, "x", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok1" {
			t.Errorf("Authorization = %q, want Bearer tok1", got)
		}
		w.Write([]byte(`{"data":{"username":"alice","verified":true,"profile_image_url":"https://pbs.example/alice.png","public_metrics":{"followers_count":100,"following_count":42,"tweet_count":512}}}`))
	})
	defer cleanup()

	profile, err := fetcher.FetchProfile(context.Background(), "x", "tok1")
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.Username != "alice" {
		t.Errorf("username = %q, want alice", profile.Username)
	}
	if profile.Followers != 100 || profile.Following != 42 || profile.Posts != 512 {
		t.Errorf("unexpected counts: %+v", profile)
	}
	if !profile.Verified {
		t.Error("verified flag lost")
	}
	if profile.ProfileURL != "https://x.com/alice" {
		t.Errorf("profile url = %q", profile.ProfileURL)
	}
	if profile.Platform != "x" {
		t.Errorf("platform = %q, want x", profile.Platform)
	}
}

func TestFetchProfile_FacebookCountsDefaultZero(t *testing.T) {
	fetcher, cleanup := profileFetcher(t, "facebook", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"9001","name":"Alice Doe","picture":{"data":{"url":"https://graph.example/alice.jpg"}}}`))
	})
	defer cleanup()

	profile, err := fetcher.FetchProfile(context.Background(), "facebook", "tok1")
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.Username != "Alice Doe" {
		t.Errorf("username = %q", profile.Username)
	}
	// Counts are a documented scope limitation, not an error.
	if profile.Followers != 0 || profile.Following != 0 || profile.Posts != 0 {
		t.Errorf("expected zero counts, got %+v", profile)
	}
	if profile.ProfileURL != "https://www.facebook.com/9001" {
		t.Errorf("profile url = %q", profile.ProfileURL)
	}
}

func TestFetchProfile_InstagramMediaCount(t *testing.T) {
	fetcher, cleanup := profileFetcher(t, "instagram", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"17841","username":"alice.gram","account_type":"PERSONAL","media_count":37}`))
	})
	defer cleanup()

	profile, err := fetcher.FetchProfile(context.Background(), "instagram", "tok1")
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.Posts != 37 {
		t.Errorf("posts = %d, want 37", profile.Posts)
	}
	if profile.Followers != 0 {
		t.Errorf("followers = %d, want 0", profile.Followers)
	}
}

func TestFetchProfile_TikTokNestedUser(t *testing.T) {
	fetcher, cleanup := profileFetcher(t, "tiktok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"user":{"display_name":"alice.tok","avatar_url":"https://p16.example/a.webp","profile_deep_link":"https://www.tiktok.com/@alice.tok","follower_count":1500,"following_count":10,"video_count":88,"is_verified":false}}}`))
	})
	defer cleanup()

	profile, err := fetcher.FetchProfile(context.Background(), "tiktok", "tok1")
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.Followers != 1500 || profile.Posts != 88 {
		t.Errorf("unexpected counts: %+v", profile)
	}
	if profile.ProfileURL != "https://www.tiktok.com/@alice.tok" {
		t.Errorf("profile url = %q", profile.ProfileURL)
	}
}

func TestFetchProfile_LinkedInUserinfo(t *testing.T) {
	fetcher, cleanup := profileFetcher(t, "linkedin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sub":"a1b2c3","name":"Alice Doe","picture":"https://media.example/alice.jpg"}`))
	})
	defer cleanup()

	profile, err := fetcher.FetchProfile(context.Background(), "linkedin", "tok1")
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.ProfileURL != "https://www.linkedin.com/in/a1b2c3" {
		t.Errorf("profile url = %q", profile.ProfileURL)
	}
}

func TestFetchProfile_ThreadsUsername(t *testing.T) {
	fetcher, cleanup := profileFetcher(t, "threads", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"555","username":"alice.threads","threads_profile_picture_url":"https://t.example/a.jpg"}`))
	})
	defer cleanup()

	profile, err := fetcher.FetchProfile(context.Background(), "threads", "tok1")
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if profile.ProfileURL != "https://www.threads.net/@alice.threads" {
		t.Errorf("profile url = %q", profile.ProfileURL)
	}
}

func TestFetchProfile_NonSuccessStatus(t *testing.T) {
	fetcher, cleanup := profileFetcher(t, "x", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"title":"Unauthorized"}`))
	})
	defer cleanup()

	_, err := fetcher.FetchProfile(context.Background(), "x", "expired")
	var pfe *ProfileFetchError
	if !errors.As(err, &pfe) {
		t.Fatalf("expected ProfileFetchError, got %v", err)
	}
	if pfe.Platform != "x" || pfe.StatusCode != http.StatusUnauthorized {
		t.Errorf("unexpected error fields: %+v", pfe)
	}
}

func TestFetchProfile_UnsupportedPlatform(t *testing.T) {
	fetcher := NewFetcher(testRegistry(), 5*time.Second)
	_, err := fetcher.FetchProfile(context.Background(), "myspace", "tok1")
	var upe *UnsupportedPlatformError
	if !errors.As(err, &upe) {
		t.Fatalf("expected UnsupportedPlatformError, got %v", err)
	}
}
