package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	quotesRe     = regexp.MustCompile("[\"“”‘’'`´]")
	separatorsRe = regexp.MustCompile(`[:\-–—|/\\]`)
	punctRe      = regexp.MustCompile(`[!?¡¿.,;]+`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)

	// Label prefixes are stripped in this order, once each.
	prefixRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(breaking|urgente|última hora|exclusive|exclusiva):?\s*`),
		regexp.MustCompile(`(?i)^(oficial|official):?\s*`),
		regexp.MustCompile(`(?i)^(video|vídeo|foto|gallery):?\s*`),
		regexp.MustCompile(`(?i)^(live|en vivo|directo):?\s*`),
	}
)

var htmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
	"&apos;", "'",
	"&mdash;", "—",
	"&ndash;", "–",
)

// Tracking parameters stripped during URL canonicalization, matched by
// lowercased key.
var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {},
	"utm_content": {}, "utm_id": {}, "utm_cid": {}, "utm_reader": {},
	"utm_name": {}, "utm_social-type": {},
	"fbclid": {}, "gclid": {}, "gclsrc": {}, "dclid": {}, "msclkid": {},
	"zanpid": {}, "igshid": {},
	"ref": {}, "source": {}, "from": {}, "s": {}, "share": {},
	"ncid": {}, "sr_share": {}, "ns_campaign": {}, "ns_mchannel": {},
	"mc_cid": {}, "mc_eid": {}, "mkt_tok": {},
	"oly_enc_id": {}, "oly_anon_id": {}, "vero_id": {},
	"spm": {}, "scm": {}, "_t": {}, "track": {},
}

// CleanHTML strips tags, decodes common entities and collapses whitespace.
func CleanHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = htmlEntities.Replace(s)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Title reduces a headline to a canonical comparison form. The result is
// stable: running it on its own output changes nothing.
func Title(s string) string {
	s = strings.ToLower(s)
	s = norm.NFKD.String(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = quotesRe.ReplaceAllString(s, "")
	s = separatorsRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, "")

	for _, re := range prefixRes {
		s = re.ReplaceAllString(s, "")
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CanonicalURL lowercases the scheme and host, strips tracking parameters
// and blank values, removes the fragment and trailing path slashes.
// Remaining query parameters keep their original order. An unparseable URL
// is returned unchanged.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.Fragment = ""
	u.RawQuery = filterQuery(u.RawQuery)

	return u.String()
}

func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found || value == "" {
			continue
		}

		decoded, err := url.QueryUnescape(key)
		if err != nil {
			decoded = key
		}
		if _, tracking := trackingParams[strings.ToLower(decoded)]; tracking {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// Domain extracts the lowercased host without a leading www.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}

// ContentHash fingerprints an article by normalized title, domain and
// publication hour. Articles republished in a different hour bucket hash
// differently on purpose; exact-URL dedupe still catches those.
func ContentHash(normalizedTitle, domain string, published *time.Time, now time.Time) string {
	bucketTime := now
	if published != nil {
		bucketTime = *published
	}
	bucket := bucketTime.UTC().Format("2006-01-02-15")

	sum := sha256.Sum256([]byte(normalizedTitle + "|" + domain + "|" + bucket))
	return hex.EncodeToString(sum[:])[:32]
}

// TruncateSummary caps a summary at max runes, appending an ellipsis when
// anything was cut.
func TruncateSummary(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
