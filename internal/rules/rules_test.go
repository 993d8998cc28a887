package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_IsValid(t *testing.T) {
	assert.Empty(t, Validate(Default()))
}

func TestRules_IsNoise(t *testing.T) {
	r := Default()

	assert.True(t, r.IsNoise("Linnenservice BV Industrieweg 12"))
	assert.True(t, r.IsNoise("DEBITEURNUMMER 104233"))
	assert.True(t, r.IsNoise("totaal 120"))
	assert.False(t, r.IsNoise("1022 Theedoek 24"))
}

func TestRules_HasDateMarker(t *testing.T) {
	r := Default()
	assert.True(t, r.HasDateMarker("Leverdatum: 03-02-2025"))
	assert.True(t, r.HasDateMarker("LEVERDATUM 03-02-2025"))
	assert.False(t, r.HasDateMarker("Orderdatum 01-02-2025"))

	r.DateMarker = ""
	assert.False(t, r.HasDateMarker("Leverdatum 03-02-2025"))
}

func TestRules_IsIgnored(t *testing.T) {
	r := Default()
	assert.True(t, r.IsIgnored("104233"))
	assert.False(t, r.IsIgnored("1022"))
}

func TestRules_DisplayNameAndExclusion(t *testing.T) {
	r := Default()

	assert.Equal(t, "Keukendoek", r.DisplayName("1160", "KEUKENDOEK 50X50 GEBL"))
	assert.Equal(t, "Theedoek", r.DisplayName("1022", "Theedoek"))

	assert.True(t, r.IsExcluded(r.DisplayName("2041", "Mop 40cm")))
	assert.True(t, r.IsExcluded("VLOERMOP blauw"))
	assert.False(t, r.IsExcluded("Theedoek"))
}

func TestRules_CloneIsDeep(t *testing.T) {
	r := Default()
	c := r.Clone()
	c.Renames["1022"] = "changed"
	c.IgnoreIDs[0] = "0000"

	assert.NotContains(t, r.Renames, "1022")
	assert.Equal(t, "3812", r.IgnoreIDs[0])
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	r := &Rules{
		LineTolerance:   0,
		IgnoreIDs:       []string{"12a"},
		Renames:         map[string]string{"x1": "", "1001": "ok"},
		NoiseMarkers:    []string{""},
		ExcludeKeywords: []string{""},
	}

	errs := Validate(r)

	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.ElementsMatch(t, []string{
		ErrTolerance, ErrDateMarker, ErrUnknownName, ErrIgnoreID,
		ErrRenameID, ErrRenameName, ErrEmptyKeyword, ErrEmptyKeyword,
	}, codes)
}

func TestValidationError_Format(t *testing.T) {
	e := ValidationError{Field: "date_marker", Message: "is required", Code: ErrDateMarker}
	assert.Equal(t, "[E202] date_marker: is required", e.Error())
}
