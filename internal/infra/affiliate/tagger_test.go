package affiliate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagAppendsPartnerParameter(t *testing.T) {
	tagger := New("dealmind-20")

	tagged := tagger.Tag("https://amazon.com/product/12345")
	require.Equal(t, "https://amazon.com/product/12345?tag=dealmind-20", tagged)
	require.Equal(t, 1, strings.Count(tagged, "tag=dealmind-20"))
}

func TestTagPreservesExistingQuery(t *testing.T) {
	tagger := New("dealmind-20")

	tagged := tagger.Tag("https://www.amazon.co.uk/dp/B01?ref=sr_1_1")
	require.Equal(t, "https://www.amazon.co.uk/dp/B01?ref=sr_1_1&tag=dealmind-20", tagged)
	require.Contains(t, tagged, "ref=sr_1_1")
}

func TestTagPassesThroughUnrecognizedHosts(t *testing.T) {
	tagger := New("dealmind-20")

	for _, raw := range []string{
		"https://bestbuy.com/product/67890",
		"https://notamazon.com/dp/1",
		"https://amazon.com.evil.example/dp/1",
	} {
		require.Equal(t, raw, tagger.Tag(raw))
	}
}

func TestRetagSwapsPartner(t *testing.T) {
	tagger := New("dealmind-20")
	tagger.Retag("dealmind-21")

	require.Equal(t, "https://amazon.com/p/1?tag=dealmind-21", tagger.Tag("https://amazon.com/p/1"))
}
