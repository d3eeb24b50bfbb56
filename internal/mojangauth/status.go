package mojangauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// StatusSummaryURL is the published summary.json this package polls
// for service status aggregation, per spec §4.5.1/§6.
const StatusSummaryURL = "https://launchercontent.mojang.com/v2/oreui/status/summary.json"

// Color is a projected service health color, per spec §4.5.1.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorGrey   Color = "grey"
)

// knownServiceSlugs is the fixed set of service slugs this launcher
// surfaces, per spec §6. Unlisted slugs in a summary.json response are
// ignored; listed slugs absent from the response project to grey.
var knownServiceSlugs = []string{
	"mojang-multiplayer-session-service",
	"microsoft-o-auth-server",
	"xbox-live-auth-server",
	"xbox-live-gatekeeper",
	"microsoft-minecraft-api",
	"microsoft-minecraft-profile",
}

// ServiceStatus is one known service's projected color.
type ServiceStatus struct {
	Slug  string `json:"slug"`
	Color Color  `json:"color"`
}

type summaryEntry struct {
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

// StatusAggregate polls summaryURL for a JSON array of {slug,status}
// and projects every known service slug into a color, per spec §4.5.1:
// up->green, down->red, unknown or transport-failed->grey. The
// returned slice is always freshly constructed — no shared mutable
// default template is cached and mutated in place (spec.md's global
// mutable state warning).
func StatusAggregate(ctx context.Context, client *http.Client, summaryURL string) ([]ServiceStatus, error) {
	statusBySlug, err := fetchSummary(ctx, client, summaryURL)
	if err != nil {
		statusBySlug = nil
	}

	result := make([]ServiceStatus, 0, len(knownServiceSlugs))
	for _, slug := range knownServiceSlugs {
		result = append(result, ServiceStatus{Slug: slug, Color: projectColor(statusBySlug[slug])})
	}
	return result, nil
}

func fetchSummary(ctx context.Context, client *http.Client, summaryURL string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, summaryURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mojangauth: status summary returned status %d", resp.StatusCode)
	}

	var entries []summaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}

	byStatus := make(map[string]string, len(entries))
	for _, e := range entries {
		byStatus[e.Slug] = e.Status
	}
	return byStatus, nil
}

func projectColor(status string) Color {
	switch status {
	case "up":
		return ColorGreen
	case "down":
		return ColorRed
	default:
		return ColorGrey
	}
}
