// Package digest turns a batch of qualifying events into at most one email
// notification per source category. Grouping is deliberately coarse: a run
// never produces more than one email per category per user, which bounds
// email volume regardless of how busy the catalog is.
package digest

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/opencatalog/catalog-notifier/internal/model"
)

// activityBody renders the activity digest email. The individual
// activities are intentionally not itemized; the digest only says that
// there is something new to look at.
var activityBody = template.Must(template.New("activity").Parse(
	`Hi {{.User.DisplayName}},

You have {{.Count}} new {{if eq .Count 1}}activity{{else}}activities{{end}} on your {{.SiteTitle}} dashboard activity stream.

To view your dashboard activity stream, visit:

  {{.SiteURL}}/dashboard

--
Message sent by {{.SiteTitle}} ({{.SiteURL}})
`))

// searchBody renders the saved-search digest email, one line per changed
// search with a browsable link to its current results.
var searchBody = template.Must(template.New("savedsearch").Parse(
	`Hi {{.User.DisplayName}},

Results have changed for saved searches of yours on {{.SiteTitle}}:
{{range .Changes}}
  * {{if .Updated}}Results updated{{else}}New results{{end}}: {{.SearchURL}}
{{end}}
--
Message sent by {{.SiteTitle}} ({{.SiteURL}})
`))

// Composer builds digest notifications for a configured site.
type Composer struct {
	siteTitle string
	siteURL   string
}

// NewComposer creates a Composer for the given site title and root URL.
func NewComposer(siteTitle, siteURL string) *Composer {
	return &Composer{
		siteTitle: siteTitle,
		siteURL:   strings.TrimRight(siteURL, "/"),
	}
}

// ComposeActivities returns at most one notification covering the given
// dashboard activities. It returns nothing when there are no activities or
// the user has not opted into activity email.
func (c *Composer) ComposeActivities(
	user model.User,
	activities []model.Activity,
) ([]model.Notification, error) {
	if len(activities) == 0 {
		return nil, nil
	}
	if !user.ActivityStreamsEmailNotifications {
		return nil, nil
	}

	n := len(activities)
	subject := fmt.Sprintf("%d new activity from %s", n, c.siteTitle)
	if n != 1 {
		subject = fmt.Sprintf("%d new activities from %s", n, c.siteTitle)
	}

	body, err := c.render(activityBody, map[string]interface{}{
		"User":      user,
		"Count":     n,
		"SiteTitle": c.siteTitle,
		"SiteURL":   c.siteURL,
	})
	if err != nil {
		return nil, err
	}

	return []model.Notification{{Subject: subject, Body: body}}, nil
}

// changeView is the per-change data handed to the search body template.
type changeView struct {
	Updated   bool
	SearchURL string
}

// ComposeSearchChanges returns at most one notification covering the given
// saved-search changes. It returns nothing when there are no changes or the
// user has not opted into activity email.
func (c *Composer) ComposeSearchChanges(
	user model.User,
	changes []model.SearchChange,
) ([]model.Notification, error) {
	if len(changes) == 0 {
		return nil, nil
	}
	if !user.ActivityStreamsEmailNotifications {
		return nil, nil
	}

	views := make([]changeView, 0, len(changes))
	for _, ch := range changes {
		views = append(views, changeView{
			Updated:   ch.Type == model.ChangeResultsUpdated,
			SearchURL: ch.SearchURL,
		})
	}

	subject := "New result information from " + c.siteTitle
	body, err := c.render(searchBody, map[string]interface{}{
		"User":      user,
		"Changes":   views,
		"SiteTitle": c.siteTitle,
		"SiteURL":   c.siteURL,
	})
	if err != nil {
		return nil, err
	}

	return []model.Notification{{Subject: subject, Body: body}}, nil
}

// render executes a body template against data.
func (c *Composer) render(
	tmpl *template.Template,
	data map[string]interface{},
) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s digest body: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}
