package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Wordlists carries every blocklist, allowlist and domain map the pipeline
// consults. They ship with compiled-in defaults and can be replaced
// per-deployment from a YAML file, so tuning never touches extraction code.
type Wordlists struct {
	// FillerNames are placeholder names LLMs emit when they have no real
	// person to report.
	FillerNames []string `yaml:"filler_names" mapstructure:"filler_names"`

	// NonNamePhrases are capitalized phrases that look like names but are
	// job-title fragments, place names, headline verbs or boilerplate.
	NonNamePhrases []string `yaml:"non_name_phrases" mapstructure:"non_name_phrases"`

	// CompanyIndicators are tokens that mark a phrase as a company name.
	CompanyIndicators []string `yaml:"company_indicators" mapstructure:"company_indicators"`

	// TitleWords are title/action words that disqualify an individual name
	// part ("Chief", "Announces").
	TitleWords []string `yaml:"title_words" mapstructure:"title_words"`

	// KnownTitles is the fixed role vocabulary used by the title-adjacent
	// extraction rule and the proximity fallback.
	KnownTitles []string `yaml:"known_titles" mapstructure:"known_titles"`

	// PoliticalRoles is the government/political-office vocabulary.
	PoliticalRoles []string `yaml:"political_roles" mapstructure:"political_roles"`

	// ReputableSources is the hostname allow-list that breaks ties during
	// deduplication and feeds the confidence scorer.
	ReputableSources []string `yaml:"reputable_sources" mapstructure:"reputable_sources"`

	// RoleStopWords terminate role text during extraction.
	RoleStopWords []string `yaml:"role_stop_words" mapstructure:"role_stop_words"`

	// Soft404Markers are body substrings indicating a page that 200s but
	// does not exist.
	Soft404Markers []string `yaml:"soft_404_markers" mapstructure:"soft_404_markers"`

	// RegulatoryBodies are agency names recognized when grouping events.
	RegulatoryBodies []string `yaml:"regulatory_bodies" mapstructure:"regulatory_bodies"`

	// CompetitorDomains maps a competitor name (lowercased) to the domains
	// it controls; used by the verifier's domain-match step.
	CompetitorDomains map[string][]string `yaml:"competitor_domains" mapstructure:"competitor_domains"`
}

// LoadWordlists returns the compiled-in defaults, overlaid with the YAML
// file at path when path is non-empty. Lists present in the file replace
// the corresponding defaults wholesale.
func LoadWordlists(path string) (*Wordlists, error) {
	wl := DefaultWordlists()
	if path == "" {
		return wl, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read wordlists %s", path)
	}

	var override Wordlists
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "config: parse wordlists %s", path)
	}

	if len(override.FillerNames) > 0 {
		wl.FillerNames = override.FillerNames
	}
	if len(override.NonNamePhrases) > 0 {
		wl.NonNamePhrases = override.NonNamePhrases
	}
	if len(override.CompanyIndicators) > 0 {
		wl.CompanyIndicators = override.CompanyIndicators
	}
	if len(override.TitleWords) > 0 {
		wl.TitleWords = override.TitleWords
	}
	if len(override.KnownTitles) > 0 {
		wl.KnownTitles = override.KnownTitles
	}
	if len(override.PoliticalRoles) > 0 {
		wl.PoliticalRoles = override.PoliticalRoles
	}
	if len(override.ReputableSources) > 0 {
		wl.ReputableSources = override.ReputableSources
	}
	if len(override.RoleStopWords) > 0 {
		wl.RoleStopWords = override.RoleStopWords
	}
	if len(override.Soft404Markers) > 0 {
		wl.Soft404Markers = override.Soft404Markers
	}
	if len(override.RegulatoryBodies) > 0 {
		wl.RegulatoryBodies = override.RegulatoryBodies
	}
	if len(override.CompetitorDomains) > 0 {
		wl.CompetitorDomains = override.CompetitorDomains
	}

	return wl, nil
}

// DefaultWordlists returns the compiled-in lists.
func DefaultWordlists() *Wordlists {
	return &Wordlists{
		FillerNames: []string{
			"John Doe", "Jane Doe", "John Smith", "Jane Smith",
			"John Q. Public", "Joe Bloggs", "Max Mustermann",
		},
		NonNamePhrases: []string{
			"Vice President", "Executive Officer", "Chief Executive",
			"Managing Director", "Board Member", "Senior Management",
			"General Counsel", "Press Release", "Read More", "Learn More",
			"Privacy Policy", "Cookie Policy", "Terms Conditions",
			"Breaking News", "Top Stories", "Stock Market", "Wall Street",
			"United States", "New York", "San Francisco", "Los Angeles",
			"Hong Kong", "Annual Report", "Earnings Call", "Business Wire",
			"Associated Press", "All Rights",
		},
		CompanyIndicators: []string{
			"Capital", "Partners", "Holdings", "Group", "Ventures",
			"Advisors", "Associates", "Management", "Solutions",
			"Technologies", "Consulting", "Industries", "Enterprises",
			"Inc", "LLC", "Ltd", "Corp", "Corporation", "Bank", "Fund",
		},
		TitleWords: []string{
			"Chief", "President", "Officer", "Director", "Chairman",
			"Executive", "Founder", "Partner", "Manager", "Head",
			"Announces", "Appoints", "Names", "Hires", "Promotes",
			"Welcomes", "Joins", "Launches", "Reports", "Taps",
		},
		KnownTitles: []string{
			"CEO", "CFO", "COO", "CTO", "CIO", "CMO", "CISO", "CHRO",
			"Chief Executive", "Chief Executive Officer", "Chief Financial Officer",
			"Chief Operating Officer", "Chief Technology Officer",
			"Chief Information Officer", "Chief Marketing Officer",
			"President", "Chairman", "Chairwoman", "Chair",
			"General Counsel", "Managing Director", "Executive Director",
			"Vice President", "Head of",
		},
		PoliticalRoles: []string{
			"Senator", "Governor", "Congressman", "Congresswoman",
			"Representative", "Mayor", "Minister", "Prime Minister",
			"Secretary of State", "Attorney General", "Ambassador",
			"White House", "President of the United States",
		},
		ReputableSources: []string{
			"reuters.com", "apnews.com", "bloomberg.com", "wsj.com",
			"ft.com", "nytimes.com", "cnbc.com", "forbes.com",
			"fortune.com", "barrons.com", "marketwatch.com", "axios.com",
			"businesswire.com", "prnewswire.com", "globenewswire.com",
			"techcrunch.com", "sec.gov", "ftc.gov", "justice.gov",
		},
		RoleStopWords: []string{
			" and ", " while ", " effective ", " after ", " following ",
			" where ", " succeeding ", " replacing ", " beginning ",
			" starting ", ", effective", ", succeeding", ", replacing",
		},
		// A bare "404" marker is deliberately absent: the substring shows up
		// in article bodies and URLs far too often to treat as a dead page.
		Soft404Markers: []string{
			"page not found", "404 not found", "no longer available",
			"page you requested", "page does not exist",
			"content is unavailable",
		},
		RegulatoryBodies: []string{
			"SEC", "FTC", "DOJ", "CFPB", "FINRA", "OCC", "FDIC", "CFTC",
			"EPA", "OSHA", "FCC", "FAA", "FDA", "NLRB", "NYDFS",
			"European Commission", "ICO",
		},
		CompetitorDomains: map[string][]string{},
	}
}
