package service

import "strings"

// Lists holds the fixed vocabularies the extractor matches URLs against.
// Replacing a list changes which facts fire, never the feature vector layout.
type Lists struct {
	SuspiciousKeywords []string `yaml:"suspicious_keywords"`
	SuspiciousTLDs     []string `yaml:"suspicious_tlds"`
	Shorteners         []string `yaml:"shorteners"`
	Brands             []string `yaml:"brands"`
}

// DefaultLists returns the built-in detection vocabularies.
func DefaultLists() Lists {
	return Lists{
		SuspiciousKeywords: []string{
			"secure", "verify", "account", "update", "confirm", "login",
			"signin", "banking", "ebayisapi", "webscr", "suspend", "restrict",
			"limited", "unusual", "activity", "validate", "urgent", "immediate",
			"password", "wallet",
		},
		SuspiciousTLDs: []string{
			"tk", "ml", "ga", "cf", "gq", "xyz", "top", "zip", "mov",
			"click", "country", "loan", "work", "rest",
		},
		Shorteners: []string{
			"bit.ly", "tinyurl.com", "goo.gl", "ow.ly", "t.co", "is.gd",
			"buff.ly", "adf.ly", "shorte.st", "bc.vc", "v.gd", "vzturl.com",
			"cutt.ly", "rb.gy", "tiny.cc", "s.id",
		},
		Brands: []string{
			"paypal.com", "google.com", "microsoft.com", "apple.com", "amazon.com",
			"facebook.com", "ebay.com", "wellsfargo.com", "chase.com", "netflix.com",
			"instagram.com", "linkedin.com", "bankofamerica.com", "dropbox.com",
			"outlook.com", "icloud.com", "yahoo.com", "twitter.com", "whatsapp.com",
			"adobe.com",
		},
	}
}

// Normalize lower-cases entries, strips leading dots and drops blanks and
// duplicates. Empty lists fall back to the defaults.
func (l Lists) Normalize() Lists {
	def := DefaultLists()
	return Lists{
		SuspiciousKeywords: normalizeList(l.SuspiciousKeywords, def.SuspiciousKeywords),
		SuspiciousTLDs:     normalizeList(l.SuspiciousTLDs, def.SuspiciousTLDs),
		Shorteners:         normalizeList(l.Shorteners, def.Shorteners),
		Brands:             normalizeList(l.Brands, def.Brands),
	}
}

func normalizeList(in, fallback []string) []string {
	if len(in) == 0 {
		in = fallback
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
