package platforms

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func testRegistry() *Registry {
	creds := map[string]Credentials{}
	for _, id := range []string{"x", "facebook", "instagram", "linkedin", "tiktok", "threads"} {
		creds[id] = Credentials{
			ClientID:     "client-" + id,
			ClientSecret: "secret-" + id,
		}
	}
	return NewRegistry("https://app.example.com", creds)
}

func TestBuildAuthorizeURL_AllPlatforms(t *testing.T) {
	registry := testRegistry()
	builder := &AuthorizeURLBuilder{Registry: registry, States: &StateCodec{}}

	for _, id := range registry.IDs() {
		t.Run(id, func(t *testing.T) {
			raw, err := builder.BuildAuthorizeURL(id, "u1")
			if err != nil {
				t.Fatalf("BuildAuthorizeURL failed: %v", err)
			}

			pc, _ := registry.Get(id)
			if !strings.HasPrefix(raw, pc.AuthorizeURL) {
				t.Errorf("url %s does not start with authorize endpoint %s", raw, pc.AuthorizeURL)
			}

			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("unparseable url: %v", err)
			}
			q := u.Query()
			if got := q.Get("client_id"); got != pc.ClientID {
				t.Errorf("client_id = %q, want %q", got, pc.ClientID)
			}
			if got := q.Get("redirect_uri"); got != pc.RedirectURI {
				t.Errorf("redirect_uri = %q, want %q", got, pc.RedirectURI)
			}
			if got := q.Get("scope"); got != strings.Join(pc.Scopes, " ") {
				t.Errorf("scope = %q, want %q", got, strings.Join(pc.Scopes, " "))
			}
			if got := q.Get("response_type"); got != "code" {
				t.Errorf("response_type = %q, want code", got)
			}

			// The state must decode back to the same (user, platform) pair.
			if err := builder.States.Verify(q.Get("state"), "u1", id); err != nil {
				t.Errorf("state does not verify against the originating pair: %v", err)
			}
		})
	}
}

func TestBuildAuthorizeURL_RedirectURIPattern(t *testing.T) {
	registry := testRegistry()
	pc, err := registry.Get("tiktok")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := "https://app.example.com/api/auth/callback/tiktok"
	if pc.RedirectURI != want {
		t.Errorf("redirect URI = %q, want %q", pc.RedirectURI, want)
	}
}

func TestBuildAuthorizeURL_UnsupportedPlatform(t *testing.T) {
	builder := &AuthorizeURLBuilder{Registry: testRegistry(), States: &StateCodec{}}

	_, err := builder.BuildAuthorizeURL("myspace", "u1")
	var upe *UnsupportedPlatformError
	if !errors.As(err, &upe) {
		t.Fatalf("expected UnsupportedPlatformError, got %v", err)
	}
	if upe.Platform != "myspace" {
		t.Errorf("error platform = %q, want myspace", upe.Platform)
	}
}

func TestRegistry_OverrideUnknownPlatform(t *testing.T) {
	registry := testRegistry()
	if err := registry.Override("myspace", "http://localhost/a", "", ""); err == nil {
		t.Error("expected Override of unknown platform to fail")
	}
}
