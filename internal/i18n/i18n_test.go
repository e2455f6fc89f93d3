package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_LoadsBundledLocales(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.ElementsMatch(t, []string{"en", "zh_TW"}, GetSupportedLanguages())
	assert.Equal(t, "Product not found", T("en", KeyProductNotFound))
	assert.Equal(t, "找不到商品", T("zh_TW", KeyProductNotFound))
	assert.Equal(t, "Found 3 products", T("en", KeySearchResultsFound, 3))
}

func TestBundledLocalesShareKeys(t *testing.T) {
	require.NoError(t, Initialize("en"))

	en := instance.translations["en"]
	zh := instance.translations["zh_TW"]
	for key := range en {
		assert.Contains(t, zh, key)
	}
	assert.Len(t, zh, len(en))
}

func TestT_Fallbacks(t *testing.T) {
	i := &I18n{translations: map[string]map[string]string{}, defaultLang: "en"}
	require.NoError(t, i.LoadTranslations(fstest.MapFS{
		"l/en.json": {Data: []byte(`{"greet": "hello %s", "only_en": "english"}`)},
		"l/fr.json": {Data: []byte(`{"greet": "bonjour %s"}`)},
	}, "l"))

	assert.Equal(t, "bonjour ana", i.T("fr", "greet", "ana"))
	assert.Equal(t, "english", i.T("fr", "only_en"))
	assert.Equal(t, "english", i.T("de", "only_en"))
	assert.Equal(t, "missing.key", i.T("en", "missing.key"))
}

func TestLoadTranslations_BadJSON(t *testing.T) {
	i := &I18n{translations: map[string]map[string]string{}, defaultLang: "en"}
	err := i.LoadTranslations(fstest.MapFS{"l/en.json": {Data: []byte(`{`)}}, "l")
	assert.Error(t, err)
}
