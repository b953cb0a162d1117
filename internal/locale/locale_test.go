package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	ar, err := Lookup(" AR ")
	require.NoError(t, err)
	assert.Equal(t, "ar", ar.Tag)

	_, err = Lookup("fr")
	require.Error(t, err)
}

func TestCatalogsAreComplete(t *testing.T) {
	for tag, c := range catalogs {
		t.Run(tag, func(t *testing.T) {
			for name, value := range map[string]string{
				"system":   c.SystemInstruction,
				"greeting": c.GreetingPrompt,
				"welcome":  c.Welcome,
				"error":    c.GenericError,
				"limit":    c.LimitReached,
				"wrongPin": c.WrongPin,
				"corrupt":  c.CorruptData,
				"session":  c.NoSession,
				"full":     c.MemoryFull,
				"busy":     c.Busy,
			} {
				assert.NotEmpty(t, value, name)
			}
			assert.Contains(t, c.SystemInstruction, "saveUserData")
			assert.Contains(t, c.GreetingPrompt, "getAllUserData")
		})
	}
}

func TestToolResultFormats(t *testing.T) {
	ar := MustLookup("ar")

	assert.Equal(t, "تم حفظ المعلومة بنجاح: birthday", ar.Saved("birthday"))
	assert.Equal(t, "المعلومة التي وجدتها لـ name هي: سارة", ar.Found("name", "سارة"))
	assert.Equal(t, "عذراً، لم أجد أي معلومة محفوظة بالمفتاح: city", ar.Missing("city"))

	en := MustLookup("en")
	assert.Equal(t, "Saved successfully: birthday", en.Saved("birthday"))
}
