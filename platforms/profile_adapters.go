package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/reputrace/social-link/models"
)

// XProfileAdapter fetches the authenticated user from the X API v2.
type XProfileAdapter struct{}

func (a *XProfileAdapter) PlatformID() string { return models.PlatformX }

func (a *XProfileAdapter) FetchProfile(ctx context.Context, client *http.Client, pc *PlatformConfig, accessToken string) (*models.SocialProfile, error) {
	u := pc.ProfileURL + "?user.fields=public_metrics,profile_image_url,verified"
	body, err := getBearerJSON(ctx, client, pc, u, accessToken)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Username        string `json:"username"`
			ProfileImageURL string `json:"profile_image_url"`
			Verified        bool   `json:"verified"`
			PublicMetrics   struct {
				FollowersCount int64 `json:"followers_count"`
				FollowingCount int64 `json:"following_count"`
				TweetCount     int64 `json:"tweet_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse x profile response: %w", err)
	}

	return &models.SocialProfile{
		Platform:   pc.ID,
		Username:   resp.Data.Username,
		ProfileURL: "https://x.com/" + resp.Data.Username,
		AvatarURL:  resp.Data.ProfileImageURL,
		Followers:  resp.Data.PublicMetrics.FollowersCount,
		Following:  resp.Data.PublicMetrics.FollowingCount,
		Posts:      resp.Data.PublicMetrics.TweetCount,
		Verified:   resp.Data.Verified,
	}, nil
}

// FacebookProfileAdapter fetches the authenticated user from the Graph API.
// Follower counts require page permissions beyond the minimal scope, so the
// count fields stay 0.
type FacebookProfileAdapter struct{}

func (a *FacebookProfileAdapter) PlatformID() string { return models.PlatformFacebook }

func (a *FacebookProfileAdapter) FetchProfile(ctx context.Context, client *http.Client, pc *PlatformConfig, accessToken string) (*models.SocialProfile, error) {
	u := pc.ProfileURL + "?fields=id,name,link,picture"
	body, err := getBearerJSON(ctx, client, pc, u, accessToken)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Link    string `json:"link"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse facebook profile response: %w", err)
	}

	profileURL := resp.Link
	if profileURL == "" {
		profileURL = "https://www.facebook.com/" + resp.ID
	}
	return &models.SocialProfile{
		Platform:   pc.ID,
		Username:   resp.Name,
		ProfileURL: profileURL,
		AvatarURL:  resp.Picture.Data.URL,
	}, nil
}

// InstagramProfileAdapter fetches the authenticated user from the Instagram
// Basic Display API, which exposes media count but no follower counts.
type InstagramProfileAdapter struct{}

func (a *InstagramProfileAdapter) PlatformID() string { return models.PlatformInstagram }

func (a *InstagramProfileAdapter) FetchProfile(ctx context.Context, client *http.Client, pc *PlatformConfig, accessToken string) (*models.SocialProfile, error) {
	u := pc.ProfileURL + "?fields=id,username,account_type,media_count"
	body, err := getBearerJSON(ctx, client, pc, u, accessToken)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID         string `json:"id"`
		Username   string `json:"username"`
		MediaCount int64  `json:"media_count"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse instagram profile response: %w", err)
	}

	return &models.SocialProfile{
		Platform:   pc.ID,
		Username:   resp.Username,
		ProfileURL: "https://www.instagram.com/" + resp.Username,
		Posts:      resp.MediaCount,
	}, nil
}

// LinkedInProfileAdapter fetches the authenticated member via the OpenID
// userinfo endpoint. Connection counts need a partner-program scope, so the
// count fields stay 0.
type LinkedInProfileAdapter struct{}

func (a *LinkedInProfileAdapter) PlatformID() string { return models.PlatformLinkedIn }

func (a *LinkedInProfileAdapter) FetchProfile(ctx context.Context, client *http.Client, pc *PlatformConfig, accessToken string) (*models.SocialProfile, error) {
	body, err := getBearerJSON(ctx, client, pc, pc.ProfileURL, accessToken)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse linkedin profile response: %w", err)
	}

	return &models.SocialProfile{
		Platform:   pc.ID,
		Username:   resp.Name,
		ProfileURL: "https://www.linkedin.com/in/" + resp.Sub,
		AvatarURL:  resp.Picture,
	}, nil
}

// TikTokProfileAdapter fetches the authenticated user from the TikTok open
// API, which nests the user object under data.user.
type TikTokProfileAdapter struct{}

func (a *TikTokProfileAdapter) PlatformID() string { return models.PlatformTikTok }

func (a *TikTokProfileAdapter) FetchProfile(ctx context.Context, client *http.Client, pc *PlatformConfig, accessToken string) (*models.SocialProfile, error) {
	u := pc.ProfileURL + "?fields=display_name,avatar_url,profile_deep_link,follower_count,following_count,video_count,is_verified"
	body, err := getBearerJSON(ctx, client, pc, u, accessToken)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			User struct {
				DisplayName     string `json:"display_name"`
				AvatarURL       string `json:"avatar_url"`
				ProfileDeepLink string `json:"profile_deep_link"`
				FollowerCount   int64  `json:"follower_count"`
				FollowingCount  int64  `json:"following_count"`
				VideoCount      int64  `json:"video_count"`
				IsVerified      bool   `json:"is_verified"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse tiktok profile response: %w", err)
	}

	user := resp.Data.User
	return &models.SocialProfile{
		Platform:   pc.ID,
		Username:   user.DisplayName,
		ProfileURL: user.ProfileDeepLink,
		AvatarURL:  user.AvatarURL,
		Followers:  user.FollowerCount,
		Following:  user.FollowingCount,
		Posts:      user.VideoCount,
		Verified:   user.IsVerified,
	}, nil
}

// ThreadsProfileAdapter fetches the authenticated user from the Threads
// Graph API. No insight counts are exposed yet, so the count fields stay 0.
type ThreadsProfileAdapter struct{}

func (a *ThreadsProfileAdapter) PlatformID() string { return models.PlatformThreads }

func (a *ThreadsProfileAdapter) FetchProfile(ctx context.Context, client *http.Client, pc *PlatformConfig, accessToken string) (*models.SocialProfile, error) {
	u := pc.ProfileURL + "?fields=id,username,threads_profile_picture_url"
	body, err := getBearerJSON(ctx, client, pc, u, accessToken)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID         string `json:"id"`
		Username   string `json:"username"`
		PictureURL string `json:"threads_profile_picture_url"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse threads profile response: %w", err)
	}

	return &models.SocialProfile{
		Platform:   pc.ID,
		Username:   resp.Username,
		ProfileURL: "https://www.threads.net/@" + resp.Username,
		AvatarURL:  resp.PictureURL,
	}, nil
}
