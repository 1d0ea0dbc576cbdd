package export

import (
	"fmt"
	"strings"
)

const (
	DailyBudget   = 320.00
	TargetCPA     = 50.00
	MaxCPC        = 2.00
	fallbackURL   = "https://www.example.org"
	fallbackOrg   = "Your Organization"
	maxHeadline   = 30
	maxDescLength = 90
)

type campaign struct {
	Name     string
	Budget   float64
	AdGroups []adGroup
}

type adGroup struct {
	Name         string
	Keywords     []string
	Ads          []responsiveAd
	FinalURL     string
	Path1, Path2 string
}

type responsiveAd struct {
	Headlines    []string
	Descriptions []string
}

// theme is one ad group template: 5 roots crossed with 5 modifiers gives 25 keywords.
type theme struct {
	name      string
	roots     []string
	modifiers []string
	path      string
	headlines []string
	descs     []string
}

type campaignTheme struct {
	suffix string
	groups []theme
}

var campaignThemes = []campaignTheme{
	{
		suffix: "Brand",
		groups: []theme{
			{
				name:      "Brand Name",
				modifiers: []string{"", "website", "official site", "contact", "about"},
				path:      "about",
				headlines: []string{"%s", "Official %s Site", "Learn About Our Mission"},
				descs:     []string{"Discover how %s serves the community. Learn about our programs today.", "Join the people who make our work possible. Visit our official website."},
			},
			{
				name:      "Brand Mission",
				modifiers: []string{"mission", "programs", "services", "impact", "team"},
				path:      "mission",
				headlines: []string{"%s Mission", "See Our Impact", "Programs That Help"},
				descs:     []string{"See the impact %s makes every day. Read our stories and results.", "Transparent, mission-driven work. Find out where your support goes."},
			},
		},
	},
	{
		suffix: "Donate",
		groups: []theme{
			{
				name:      "Online Donations",
				roots:     []string{"donate", "donation", "give", "charitable donation", "nonprofit donation"},
				modifiers: []string{"", "online", "today", "to charity", "monthly"},
				path:      "donate",
				headlines: []string{"Donate to %s", "Give Online Today", "Every Gift Matters"},
				descs:     []string{"Your donation to %s funds real programs. Give securely online now.", "Make a one-time or monthly gift. Tax receipts provided for donations."},
			},
			{
				name:      "Giving Options",
				roots:     []string{"charity giving", "give back", "support a charity", "sponsor", "tax deductible donation"},
				modifiers: []string{"", "options", "ideas", "near me", "program"},
				path:      "give",
				headlines: []string{"Ways to Give", "Support %s", "Tax Deductible Giving"},
				descs:     []string{"Explore ways to support %s, from monthly giving to sponsorships.", "Find the giving option that fits you. Every contribution counts."},
			},
		},
	},
	{
		suffix: "Volunteer",
		groups: []theme{
			{
				name:      "Volunteer Opportunities",
				roots:     []string{"volunteer", "volunteering", "volunteer work", "community service", "volunteer opportunities"},
				modifiers: []string{"", "near me", "local", "weekend", "for students"},
				path:      "volunteer",
				headlines: []string{"Volunteer With Us", "Volunteer at %s", "Make a Difference Locally"},
				descs:     []string{"Volunteer with %s and help your community. Flexible roles available.", "Sign up in minutes. Find volunteer shifts that match your schedule."},
			},
			{
				name:      "Get Involved",
				roots:     []string{"get involved", "help community", "join nonprofit", "community program", "help others"},
				modifiers: []string{"", "today", "locally", "how to", "ways to"},
				path:      "get-involved",
				headlines: []string{"Get Involved Today", "Join %s", "Help Your Community"},
				descs:     []string{"There are many ways to get involved with %s. Find yours today.", "Events, programs and outreach. Join a community that cares."},
			},
		},
	},
	{
		suffix: "Programs",
		groups: []theme{
			{
				name:      "Program Services",
				roots:     []string{"nonprofit programs", "community services", "support services", "free programs", "help programs"},
				modifiers: []string{"", "near me", "for families", "local", "free"},
				path:      "programs",
				headlines: []string{"Community Programs", "Programs by %s", "Free Support Services"},
				descs:     []string{"Find programs and services offered by %s. Open to the community.", "Get the support you need. Explore our free and low-cost programs."},
			},
			{
				name:      "Resources",
				roots:     []string{"community resources", "nonprofit resources", "free resources", "local resources", "help resources"},
				modifiers: []string{"", "guide", "online", "for families", "near me"},
				path:      "resources",
				headlines: []string{"Free Resources", "Resources From %s", "Guides and Support"},
				descs:     []string{"Browse free resources from %s. Guides, tools and local support.", "Practical help when you need it. Read our free resource library."},
			},
		},
	},
}

// buildStructure derives the whole account layout from the organization
// name and website. The same inputs always give the same structure.
func buildStructure(organization, website string) []campaign {
	org := strings.TrimSpace(organization)
	if org == "" {
		org = fallbackOrg
	}
	finalURL := normalizeURL(website)
	perCampaign := DailyBudget / float64(len(campaignThemes))

	out := make([]campaign, 0, len(campaignThemes))
	for _, ct := range campaignThemes {
		c := campaign{
			Name:   fmt.Sprintf("%s - %s", org, ct.suffix),
			Budget: perCampaign,
		}
		for _, th := range ct.groups {
			roots := th.roots
			if roots == nil {
				lower := strings.ToLower(org)
				roots = []string{lower, lower + " nonprofit", lower + " charity", lower + " organization", lower + " community"}
			}
			c.AdGroups = append(c.AdGroups, adGroup{
				Name:     th.name,
				Keywords: crossKeywords(roots, th.modifiers),
				FinalURL: finalURL,
				Path1:    th.path,
				Path2:    "",
				Ads:      buildAds(org, th),
			})
		}
		out = append(out, c)
	}
	return out
}

func crossKeywords(roots, modifiers []string) []string {
	seen := make(map[string]bool, len(roots)*len(modifiers))
	out := make([]string, 0, len(roots)*len(modifiers))
	for _, root := range roots {
		for _, mod := range modifiers {
			kw := strings.TrimSpace(root + " " + mod)
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	return out
}

func buildAds(org string, th theme) []responsiveAd {
	headlines := make([]string, 0, len(th.headlines))
	for _, h := range th.headlines {
		headlines = append(headlines, truncate(fillOrg(h, org), maxHeadline))
	}
	descs := make([]string, 0, len(th.descs))
	for _, d := range th.descs {
		descs = append(descs, truncate(fillOrg(d, org), maxDescLength))
	}

	// the second ad rotates headline order so the pair can be tested against each other
	rotated := append(append([]string{}, headlines[1:]...), headlines[0])
	swapped := []string{descs[len(descs)-1]}
	swapped = append(swapped, descs[:len(descs)-1]...)

	return []responsiveAd{
		{Headlines: headlines, Descriptions: descs},
		{Headlines: rotated, Descriptions: swapped},
	}
}

func fillOrg(tmpl, org string) string {
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, org)
	}
	return tmpl
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func normalizeURL(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return fallbackURL
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}
	return website
}
