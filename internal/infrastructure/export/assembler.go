// Package export assembles the downloadable Google Ads Editor bundle for a lead.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
)

// entryModTime is stamped on every ZIP entry so identical leads give identical bytes.
var entryModTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// CampaignAssembler renders the four CSV files plus a README into a ZIP.
type CampaignAssembler struct{}

// NewCampaignAssembler creates an assembler.
func NewCampaignAssembler() *CampaignAssembler { return &CampaignAssembler{} }

// FileName is the attachment name offered to the browser.
func (a *CampaignAssembler) FileName(lead *leads.Lead) string {
	return Slug(lead.Organization()) + "-campaigns.zip"
}

// Assemble builds the archive from the lead's organization and website.
func (a *CampaignAssembler) Assemble(lead *leads.Lead) ([]byte, error) {
	if lead == nil {
		return nil, fmt.Errorf("assemble: nil lead")
	}
	structure := buildStructure(lead.Organization(), lead.Website())

	files := []struct {
		name  string
		build func([]campaign) ([]byte, error)
	}{
		{"campaigns.csv", campaignsCSV},
		{"ad_groups.csv", adGroupsCSV},
		{"keywords.csv", keywordsCSV},
		{"responsive_search_ads.csv", adsCSV},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range files {
		data, err := f.build(structure)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f.name, err)
		}
		if err := writeEntry(zw, f.name, data); err != nil {
			return nil, err
		}
	}
	if err := writeEntry(zw, "README.txt", []byte(readme(lead, structure))); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: entryModTime,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func campaignsCSV(cs []campaign) ([]byte, error) {
	rows := [][]string{{"Campaign", "Campaign Daily Budget", "Campaign Type", "Networks", "Bid Strategy Type", "Target CPA", "Languages", "Location", "Campaign Status"}}
	for _, c := range cs {
		rows = append(rows, []string{c.Name, money(c.Budget), "Search", "Google search", "Target CPA", money(TargetCPA), "en", "United States", "Paused"})
	}
	return writeCSV(rows)
}

func adGroupsCSV(cs []campaign) ([]byte, error) {
	rows := [][]string{{"Campaign", "Ad Group", "Max CPC", "Ad Group Status"}}
	for _, c := range cs {
		for _, g := range c.AdGroups {
			rows = append(rows, []string{c.Name, g.Name, money(MaxCPC), "Enabled"})
		}
	}
	return writeCSV(rows)
}

func keywordsCSV(cs []campaign) ([]byte, error) {
	rows := [][]string{{"Campaign", "Ad Group", "Keyword", "Criterion Type", "Max CPC", "Final URL", "Status"}}
	for _, c := range cs {
		for _, g := range c.AdGroups {
			for _, kw := range g.Keywords {
				rows = append(rows, []string{c.Name, g.Name, kw, "Phrase", money(MaxCPC), g.FinalURL, "Enabled"})
			}
		}
	}
	return writeCSV(rows)
}

func adsCSV(cs []campaign) ([]byte, error) {
	header := []string{"Campaign", "Ad Group"}
	for i := 1; i <= 3; i++ {
		header = append(header, fmt.Sprintf("Headline %d", i))
	}
	header = append(header, "Description 1", "Description 2", "Final URL", "Path 1", "Path 2", "Status")

	rows := [][]string{header}
	for _, c := range cs {
		for _, g := range c.AdGroups {
			for _, ad := range g.Ads {
				row := []string{c.Name, g.Name}
				row = append(row, pad(ad.Headlines, 3)...)
				row = append(row, pad(ad.Descriptions, 2)...)
				row = append(row, g.FinalURL, g.Path1, g.Path2, "Enabled")
				rows = append(rows, row)
			}
		}
	}
	return writeCSV(rows)
}

func pad(values []string, n int) []string {
	out := make([]string, n)
	copy(out, values)
	return out
}

func readme(lead *leads.Lead, cs []campaign) string {
	var groups, keywords int
	for _, c := range cs {
		groups += len(c.AdGroups)
		for _, g := range c.AdGroups {
			keywords += len(g.Keywords)
		}
	}

	org := lead.Organization()
	if org == "" {
		org = fallbackOrg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Google Ad Grant Campaigns for %s\n", org)
	b.WriteString("Generated by Ad Grant AI\n\n")
	fmt.Fprintf(&b, "Campaigns: %d\nAd groups: %d\nKeywords: %d\n", len(cs), groups, keywords)
	fmt.Fprintf(&b, "Daily budget: $%s total\nBid strategy: Target CPA $%s\nMax CPC: $%s\n\n", money(DailyBudget), money(TargetCPA), money(MaxCPC))
	b.WriteString("FILES\n")
	b.WriteString("  campaigns.csv               campaign settings and budgets\n")
	b.WriteString("  ad_groups.csv               ad groups with bids\n")
	b.WriteString("  keywords.csv                phrase match keywords\n")
	b.WriteString("  responsive_search_ads.csv   responsive search ads\n\n")
	b.WriteString("IMPORT\n")
	b.WriteString("  1. Download Google Ads Editor (free from Google)\n")
	b.WriteString("  2. Import the files in this order: Campaigns, Ad Groups, Keywords, Ads\n")
	b.WriteString("  3. Review the paused campaigns, then enable and post your changes\n")
	return b.String()
}

// Slug lowercases s and joins alphanumeric runs with hyphens.
func Slug(s string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "adgrant"
	}
	return slug
}
