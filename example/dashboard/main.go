// Command dashboard is a minimal dev front end for walking the link flow in
// a browser: log in with any user id, connect a platform, inspect the linked
// accounts. Point the endpoint overrides at a fake provider for local runs.
package main

import (
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-session/session/v3"

	"github.com/reputrace/social-link/migrate"
	"github.com/reputrace/social-link/seed"
	"github.com/reputrace/social-link/server"
)

var portvar int

func init() {
	flag.IntVar(&portvar, "p", 9096, "the port for the dev dashboard")
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html><body>
<h3>social-link dev dashboard</h3>
{{if .UserID}}
<p>logged in as <b>{{.UserID}}</b></p>
<ul>
{{range .Platforms}}
  <li>{{.DisplayName}}{{if .Connected}} (connected){{else}} <a href="/connect/{{.ID}}">connect</a>{{end}}</li>
{{end}}
</ul>
{{else}}
<form method="POST" action="/login">
  <input name="user_id" placeholder="user id">
  <button type="submit">log in</button>
</form>
{{end}}
</body></html>`))

func main() {
	flag.Parse()

	if err := migrate.RunFromEnv(); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	// SEED_ON_START=1 loads demo accounts for the user id "demo".
	if err := seed.RunFromEnv(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	cfg := server.LoadConfig()
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("server setup failed: %v", err)
	}

	r := server.NewGinEngine(srv)

	r.POST("/login", func(c *gin.Context) {
		userID := c.PostForm("user_id")
		sess, err := session.Start(c.Request.Context(), c.Writer, c.Request)
		if err != nil {
			c.String(http.StatusInternalServerError, "session error: %v", err)
			return
		}
		sess.Set("user_id", userID)
		if err := sess.Save(); err != nil {
			c.String(http.StatusInternalServerError, "session error: %v", err)
			return
		}
		c.Redirect(http.StatusFound, "/")
	})

	r.GET("/connect/:platform", func(c *gin.Context) {
		sess, err := session.Start(c.Request.Context(), c.Writer, c.Request)
		if err != nil {
			c.Redirect(http.StatusFound, "/")
			return
		}
		v, ok := sess.Get("user_id")
		if !ok {
			c.Redirect(http.StatusFound, "/")
			return
		}
		authURL, err := srv.Builder.BuildAuthorizeURL(c.Param("platform"), v.(string))
		if err != nil {
			c.String(http.StatusBadRequest, "cannot build consent url: %v", err)
			return
		}
		c.Redirect(http.StatusFound, authURL)
	})

	r.GET("/", func(c *gin.Context) {
		data := struct {
			UserID    string
			Platforms []struct {
				ID          string
				DisplayName string
				Connected   bool
			}
		}{}

		if sess, err := session.Start(c.Request.Context(), c.Writer, c.Request); err == nil {
			if v, ok := sess.Get("user_id"); ok {
				data.UserID, _ = v.(string)
			}
		}
		if data.UserID != "" {
			connected := make(map[string]bool)
			for _, a := range srv.Links.ListAccounts(c.Request.Context(), data.UserID) {
				connected[a.Platform] = a.Connected
			}
			for _, id := range srv.Registry.IDs() {
				pc, err := srv.Registry.Get(id)
				if err != nil {
					continue
				}
				data.Platforms = append(data.Platforms, struct {
					ID          string
					DisplayName string
					Connected   bool
				}{pc.ID, pc.DisplayName, connected[pc.ID]})
			}
		}

		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := pageTmpl.Execute(c.Writer, data); err != nil {
			log.Printf("template render: %v", err)
		}
	})

	log.Printf("dev dashboard running at http://localhost:%d", portvar)
	log.Fatal(r.Run(fmt.Sprintf(":%d", portvar)))
}
