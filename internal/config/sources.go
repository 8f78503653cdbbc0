package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes one RSS feed in the sources file.
type SourceConfig struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	SportHint string `yaml:"sport_hint"`
	Weight    int    `yaml:"weight"`
}

// SourcesFile is the on-disk YAML shape. All sections are optional; empty
// sections keep the built-in defaults.
type SourcesFile struct {
	Sources           []SourceConfig `yaml:"sources"`
	TopTeams          []string       `yaml:"top_teams"`
	TrackedLeagues    map[int]string `yaml:"tracked_leagues"`
	OfficialDomains   []string       `yaml:"official_domains"`
	SpecialistDomains []string       `yaml:"specialist_domains"`
}

// LoadSourcesFile parses a YAML sources file.
func LoadSourcesFile(path string) (*SourcesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file: %w", err)
	}

	var f SourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sources file %s: %w", path, err)
	}
	return &f, nil
}

// ApplySourcesFile overrides editorial lists with non-empty sections from
// the file.
func (c *Config) ApplySourcesFile(f *SourcesFile) {
	if len(f.TopTeams) > 0 {
		c.TopTeams = f.TopTeams
	}
	if len(f.TrackedLeagues) > 0 {
		c.TrackedLeagues = f.TrackedLeagues
	}
	if len(f.OfficialDomains) > 0 {
		c.OfficialDomains = f.OfficialDomains
	}
	if len(f.SpecialistDomains) > 0 {
		c.SpecialistDomains = f.SpecialistDomains
	}
}

// DefaultSources returns the built-in Spanish-language feed set, used when
// no sources file is present.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Name: "Marca Fútbol", URL: "https://e00-marca.uecdn.es/rss/portada.xml", SportHint: "football_eu", Weight: 22},
		{Name: "Marca Primera División", URL: "https://e00-marca.uecdn.es/rss/futbol/primera-division.xml", SportHint: "football_eu", Weight: 22},
		{Name: "AS Fútbol", URL: "https://feeds.as.com/mrss-s/pages/as/site/as.com/section/futbol/portada/", SportHint: "football_eu", Weight: 22},
		{Name: "Sport", URL: "https://www.sport.es/es/rss/futbol/rss.xml", SportHint: "football_eu", Weight: 20},
		{Name: "Mundo Deportivo Fútbol", URL: "https://www.mundodeportivo.com/feed/rss/futbol", SportHint: "football_eu", Weight: 20},
		{Name: "El País Deportes", URL: "https://feeds.elpais.com/mrss-s/pages/ep/site/elpais.com/section/deportes/portada/", SportHint: "football_eu", Weight: 23},
		{Name: "20 Minutos Deportes", URL: "https://www.20minutos.es/rss/deportes/", SportHint: "football_eu", Weight: 18},
		{Name: "La Vanguardia Deportes", URL: "https://www.lavanguardia.com/rss/deportes.xml", SportHint: "football_eu", Weight: 21},
		{Name: "Transfermarkt ES", URL: "https://www.transfermarkt.es/rss/news", SportHint: "football_eu", Weight: 17},
		{Name: "Marca NBA", URL: "https://e00-marca.uecdn.es/rss/baloncesto/nba.xml", SportHint: "nba", Weight: 22},
		{Name: "AS Baloncesto", URL: "https://feeds.as.com/mrss-s/pages/as/site/as.com/section/baloncesto/portada/", SportHint: "nba", Weight: 22},
		{Name: "Mundo Deportivo NBA", URL: "https://www.mundodeportivo.com/feed/rss/baloncesto/nba", SportHint: "nba", Weight: 20},
		{Name: "Somos Basket", URL: "https://www.somosbasket.com/feed/", SportHint: "nba", Weight: 18},
		{Name: "Marca Tenis", URL: "https://e00-marca.uecdn.es/rss/mas-deporte.xml", SportHint: "tennis", Weight: 20},
		{Name: "AS Tenis", URL: "https://feeds.as.com/mrss-s/pages/as/site/as.com/section/tenis/portada/", SportHint: "tennis", Weight: 22},
		{Name: "Mundo Deportivo Tenis", URL: "https://www.mundodeportivo.com/feed/rss/tenis", SportHint: "tennis", Weight: 20},
		{Name: "Eurosport Tenis", URL: "https://www.eurosport.es/rss.xml", SportHint: "tennis", Weight: 19},
	}
}

func defaultTopTeams() []string {
	return []string{
		"Real Madrid", "Barcelona", "Atlético Madrid", "Atletico Madrid",
		"Atl. Madrid", "Atlético de Madrid",
		"Manchester City", "Manchester United", "Man City", "Man United",
		"Liverpool", "Arsenal", "Chelsea", "Tottenham",
		"Bayern Munich", "Bayern München", "Borussia Dortmund", "Dortmund",
		"PSG", "Paris Saint-Germain", "Paris Saint Germain",
		"Inter", "Inter Milan", "Internazionale", "AC Milan", "Milan",
		"Juventus",
	}
}

func defaultTrackedLeagues() map[int]string {
	return map[int]string{
		2:   "UEFA Champions League",
		140: "LaLiga",
	}
}

func defaultOfficialDomains() []string {
	return []string{
		"realmadrid.com", "fcbarcelona.com", "atleticodemadrid.com",
		"manutd.com", "mancity.com", "liverpoolfc.com", "chelseafc.com",
		"arsenal.com", "tottenhamhotspur.com", "juventus.com", "acmilan.com",
		"inter.it", "psg.fr", "fcbayern.com", "bvb.de",
		"laliga.com", "premierleague.com", "bundesliga.com", "seriea.it",
		"ligue1.com", "uefa.com", "fifa.com",
		"nba.com", "espn.com",
		"atptour.com", "wtatennis.com", "ausopen.com", "rolandgarros.com",
		"wimbledon.com", "usopen.org", "itftennis.com",
	}
}

func defaultSpecialistDomains() []string {
	return []string{
		"transfermarkt.es", "transfermarkt.com", "fichajes.net", "fichajes.com",
	}
}
