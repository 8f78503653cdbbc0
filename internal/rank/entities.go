package rank

// bigEntities are the clubs, players and competitions that move the needle
// for each sport. Matching is word-boundary based and deduplicated on the
// first word, so "bayern" and "bayern munich" count once.
var bigEntities = map[string][]string{
	"football_eu": {
		"real madrid", "barcelona", "barça", "manchester united", "man utd",
		"manchester city", "man city", "liverpool", "chelsea", "arsenal",
		"tottenham", "spurs", "juventus", "juve", "ac milan", "inter milan",
		"psg", "paris saint-germain", "bayern munich", "bayern", "dortmund",
		"atletico madrid", "atlético", "napoli", "roma",
		"messi", "cristiano ronaldo", "mbappe", "mbappé", "haaland",
		"bellingham", "vinicius", "vinícius", "neymar", "salah", "de bruyne",
		"modric", "kroos", "pedri", "gavi", "saka", "foden", "valverde",
		"champions league", "world cup", "mundial", "eurocopa", "euro 2024",
		"copa del rey", "fa cup", "premier league", "la liga",
	},
	"nba": {
		"lakers", "celtics", "warriors", "bulls", "knicks", "nets",
		"heat", "bucks", "suns", "nuggets", "clippers", "mavericks",
		"lebron", "lebron james", "stephen curry", "steph curry",
		"kevin durant", "kd", "giannis", "jokic", "embiid", "luka doncic",
		"luka", "tatum", "ja morant", "anthony davis", "kawhi",
		"nba finals", "all-star", "playoffs", "draft", "trade deadline",
	},
	"tennis": {
		"djokovic", "nadal", "federer", "alcaraz", "sinner", "medvedev",
		"zverev", "tsitsipas", "rublev", "ruud",
		"swiatek", "sabalenka", "gauff", "rybakina", "pegula",
		"wimbledon", "roland garros", "us open", "australian open",
		"grand slam", "atp finals", "wta finals",
	},
}

// exclusivityPhrases signal first-hand reporting in the headline or summary.
var exclusivityPhrases = []string{
	"exclusiva", "exclusive", "en exclusiva", "primicia", "en primicia", "scoop",
}

// specialistReporters are transfer journalists whose byline raises
// credibility for market stories.
var specialistReporters = []string{
	"fabrizio romano", "david ornstein", "gianluca di marzio",
	"matteo moretto", "alfredo pedullà", "florian plettenberg",
}
