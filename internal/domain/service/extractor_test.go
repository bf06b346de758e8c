package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/service"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
)

var fixedNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func onlineExtractor(resolver *mockResolver, verifier *mockVerifier, ages *mockAges) *service.FeatureExtractor {
	return service.NewFeatureExtractor(service.DefaultLists(),
		service.WithHostResolver(resolver),
		service.WithCertificateVerifier(verifier),
		service.WithDomainAgeLookup(ages),
		service.WithClock(func() time.Time { return fixedNow }),
	)
}

func TestExtract_Structural(t *testing.T) {
	e := service.NewFeatureExtractor(service.DefaultLists())

	raw := "http://login.example.com:8080/a/b/c?x=1&y=2"
	v, f := e.Extract(context.Background(), raw)

	assert.False(t, f.Malformed)
	assert.Equal(t, "login.example.com", f.Host)
	assert.Equal(t, "example.com", f.RegisteredDomain)
	assert.Equal(t, "com", f.TLD)
	assert.Equal(t, 1, f.SubdomainDepth)
	assert.False(t, f.HasHTTPS)
	assert.Equal(t, []string{"login"}, f.KeywordHits)

	assert.Equal(t, float64(len(raw)), v.At(model.FeatureURLLength))
	assert.Equal(t, float64(len("login.example.com")), v.At(model.FeatureHostnameLength))
	assert.Equal(t, 3.0, v.At(model.FeaturePathSegments))
	assert.Equal(t, 2.0, v.At(model.FeatureNumParams))
	assert.Equal(t, 1.0, v.At(model.FeatureHasScheme))
	assert.Equal(t, 1.0, v.At(model.FeatureHasHost))
	assert.Equal(t, 1.0, v.At(model.FeatureHasPort))
	assert.Equal(t, 0.0, v.At(model.FeatureHasHTTPS))
	assert.Equal(t, 1.0, v.At(model.FeatureSuspiciousKeywords))
}

func TestExtract_DefaultsSchemeToHTTPS(t *testing.T) {
	e := service.NewFeatureExtractor(service.DefaultLists())

	v, f := e.Extract(context.Background(), "example.org/path")

	assert.False(t, f.Malformed)
	assert.True(t, f.HasHTTPS)
	assert.Equal(t, "example.org", f.Host)
	assert.Equal(t, 0.0, v.At(model.FeatureHasScheme))
	assert.Equal(t, 1.0, v.At(model.FeatureHasHTTPS))
}

func TestExtract_Malformed(t *testing.T) {
	e := service.NewFeatureExtractor(service.DefaultLists())

	inputs := []string{"", "http://", "https://exa mple.com/", "http://[::1", "https://%zz"}
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			v, f := e.Extract(context.Background(), raw)

			assert.True(t, f.Malformed)
			assert.True(t, f.Unresolved())
			assert.Equal(t, "", f.Host)
			assert.Equal(t, 0.0, v.At(model.FeatureURLLength))
			assert.Equal(t, 0.0, v.At(model.FeatureHasHost))
			assert.Equal(t, float64(service.NoBrandDistance), v.At(model.FeatureTyposquatDistance))
			assert.Equal(t, float64(valueobject.MedianDomainAgeDays), v.At(model.FeatureDomainAgeDays))
			assert.False(t, f.SSLValid.IsKnown())
			assert.False(t, f.DNSResolves.IsKnown())
		})
	}
}

func TestExtract_IPLiteral(t *testing.T) {
	resolver := &mockResolver{err: errLookup}
	ages := &mockAges{err: errLookup}
	e := onlineExtractor(resolver, &mockVerifier{}, ages)

	v, f := e.Extract(context.Background(), "http://192.168.1.1/login")

	assert.True(t, f.IsIP)
	assert.Equal(t, "", f.RegisteredDomain)
	assert.True(t, f.DNSResolves.IsTrue())
	assert.False(t, f.DomainAge.IsKnown())
	assert.False(t, f.SSLValid.IsKnown())
	assert.Equal(t, 1.0, v.At(model.FeatureIsIP))
	assert.Equal(t, 1.0, v.At(model.FeatureDNSResolves))
}

func TestExtract_NumericIPForms(t *testing.T) {
	ages := &mockAges{created: fixedNow.AddDate(-20, 0, 0)}
	e := onlineExtractor(&mockResolver{err: errLookup}, &mockVerifier{}, ages)

	for _, raw := range []string{
		"http://3232235777/login",
		"http://0xC0A80101/login",
		"http://0300.0250.1.1/login",
		"http://192.168.1/login",
		"http://[::1]/login",
	} {
		t.Run(raw, func(t *testing.T) {
			v, f := e.Extract(context.Background(), raw)

			assert.True(t, f.IsIP)
			assert.Empty(t, f.TLD)
			assert.Empty(t, f.RegisteredDomain)
			assert.False(t, f.DomainAge.IsKnown(), "no registration lookup for IP hosts")
			assert.Equal(t, 1.0, v.At(model.FeatureIsIP))
		})
	}
}

func TestExtract_NumericLookingDomainIsNotIP(t *testing.T) {
	e := service.NewFeatureExtractor(service.DefaultLists())

	for _, raw := range []string{"http://123.com", "http://1.2.3.4.5/", "http://08.1.1.1/", "http://256.1.1.1/"} {
		t.Run(raw, func(t *testing.T) {
			_, f := e.Extract(context.Background(), raw)
			assert.False(t, f.IsIP)
		})
	}
}

func TestExtract_Typosquat(t *testing.T) {
	e := service.NewFeatureExtractor(service.DefaultLists())

	v, f := e.Extract(context.Background(), "https://paypa1.com/signin")

	require.NotNil(t, f.Typosquat)
	assert.Equal(t, "paypal.com", f.Typosquat.Brand)
	assert.Equal(t, 1, f.Typosquat.Distance)
	assert.Equal(t, 1.0, v.At(model.FeatureTyposquatDistance))
}

func TestExtract_BrandOwnDomainIsNotTyposquat(t *testing.T) {
	e := service.NewFeatureExtractor(service.DefaultLists())

	for _, raw := range []string{"https://www.paypal.com", "https://amazon.co.uk", "https://www.google.de"} {
		t.Run(raw, func(t *testing.T) {
			v, f := e.Extract(context.Background(), raw)
			assert.Nil(t, f.Typosquat)
			assert.Empty(t, f.BrandInSubdomain)
			assert.Equal(t, 0.0, v.At(model.FeatureTyposquatDistance))
		})
	}
}

func TestExtract_BrandInSubdomain(t *testing.T) {
	e := service.NewFeatureExtractor(service.DefaultLists())

	tests := []struct {
		raw   string
		brand string
	}{
		{raw: "http://paypal.com.account-check.tk/", brand: "paypal.com"},
		{raw: "https://secure-apple.id-verify.net/", brand: "apple.com"},
		{raw: "https://netflix-billing.com/", brand: "netflix.com"},
		{raw: "https://pineapple.example.com/", brand: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, f := e.Extract(context.Background(), tt.raw)
			assert.Equal(t, tt.brand, f.BrandInSubdomain)
			assert.Equal(t, boolValue(tt.brand != ""), v.At(model.FeatureBrandInSubdomain))
		})
	}
}

func TestExtract_ListsMatchWholeHosts(t *testing.T) {
	e := service.NewFeatureExtractor(service.DefaultLists())

	_, short := e.Extract(context.Background(), "https://bit.ly/abc")
	assert.True(t, short.Shortener)

	_, ms := e.Extract(context.Background(), "https://microsoft.com")
	assert.False(t, ms.Shortener)

	_, tk := e.Extract(context.Background(), "http://free-prizes.tk")
	assert.True(t, tk.SuspiciousTLD)
	assert.Equal(t, "tk", tk.TLD)
}

func TestExtract_Punycode(t *testing.T) {
	e := service.NewFeatureExtractor(service.DefaultLists())

	v, f := e.Extract(context.Background(), "https://xn--bcher-kva.de/")
	assert.True(t, f.IsPunycode)
	assert.Equal(t, 1.0, v.At(model.FeatureIsPunycode))

	_, unicode := e.Extract(context.Background(), "https://bücher.de/")
	assert.True(t, unicode.IsPunycode)
	assert.Equal(t, "xn--bcher-kva.de", unicode.Host)
}

func TestExtract_NetworkLookupsResolved(t *testing.T) {
	resolver := &mockResolver{count: 2}
	verifier := &mockVerifier{valid: true}
	ages := &mockAges{created: fixedNow.AddDate(0, 0, -10)}
	e := onlineExtractor(resolver, verifier, ages)

	v, f := e.Extract(context.Background(), "https://fresh-site.com:8443/")

	assert.True(t, f.DNSResolves.IsTrue())
	assert.True(t, f.SSLValid.IsTrue())
	days, known := f.DomainAge.Days()
	assert.True(t, known)
	assert.Equal(t, 10, days)
	assert.Equal(t, 10.0, v.At(model.FeatureDomainAgeDays))
	assert.Equal(t, 1.0, v.At(model.FeatureDomainAgeKnown))
	assert.Equal(t, 1.0, v.At(model.FeatureSSLValid))
	assert.Equal(t, []string{"fresh-site.com"}, verifier.calls)
}

func TestExtract_NegativeOutcomesDistinctFromUnknown(t *testing.T) {
	e := onlineExtractor(&mockResolver{count: 0}, &mockVerifier{valid: false}, &mockAges{err: errLookup})

	v, f := e.Extract(context.Background(), "https://nowhere.example")

	assert.True(t, f.DNSResolves.IsFalse())
	assert.True(t, f.SSLValid.IsFalse())
	assert.False(t, f.DomainAge.IsKnown())
	assert.Equal(t, -1.0, v.At(model.FeatureDNSResolves))
	assert.Equal(t, -1.0, v.At(model.FeatureSSLValid))
	assert.Equal(t, float64(valueobject.MedianDomainAgeDays), v.At(model.FeatureDomainAgeDays))
	assert.Equal(t, 0.0, v.At(model.FeatureDomainAgeKnown))
}

func TestExtract_SkipsTLSCheckForPlainHTTP(t *testing.T) {
	verifier := &mockVerifier{valid: true}
	e := onlineExtractor(&mockResolver{count: 1}, verifier, &mockAges{err: errLookup})

	_, f := e.Extract(context.Background(), "http://example.com")

	assert.Empty(t, verifier.calls)
	assert.False(t, f.SSLValid.IsKnown())
}

func TestExtract_AllLookupsTimeOut(t *testing.T) {
	var l blockingLookups
	e := service.NewFeatureExtractor(service.DefaultLists(),
		service.WithHostResolver(l),
		service.WithCertificateVerifier(l),
		service.WithDomainAgeLookup(l),
		service.WithLookupTimeout(20*time.Millisecond),
	)

	start := time.Now()
	v, f := e.Extract(context.Background(), "https://slow.example.com/")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second, "lookups should run concurrently under their own timeouts")
	assert.False(t, f.Malformed)
	assert.False(t, f.DNSResolves.IsKnown())
	assert.False(t, f.SSLValid.IsKnown())
	assert.False(t, f.DomainAge.IsKnown())
	assert.Equal(t, 0.0, v.At(model.FeatureDNSResolves))
	assert.Equal(t, 0.0, v.At(model.FeatureSSLValid))
}

func TestExtract_Deterministic(t *testing.T) {
	e := onlineExtractor(&mockResolver{count: 1}, &mockVerifier{valid: true},
		&mockAges{created: fixedNow.AddDate(-3, 0, 0)})

	raw := "https://secure-login.paypa1.com/verify?redirect=https://x.test"
	first, firstFacts := e.Extract(context.Background(), raw)
	for i := 0; i < 5; i++ {
		next, nextFacts := e.Extract(context.Background(), raw)
		assert.Equal(t, first.Bytes(), next.Bytes())
		assert.Equal(t, firstFacts, nextFacts)
	}
}

func TestExtract_CustomListsKeepArity(t *testing.T) {
	e := service.NewFeatureExtractor(service.Lists{SuspiciousKeywords: []string{"Prize", "prize", " "}})

	v, f := e.Extract(context.Background(), "https://win-a-prize.example/")

	assert.Equal(t, []string{"prize"}, f.KeywordHits)
	assert.Equal(t, model.FeatureCount, len(v.Values()))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
