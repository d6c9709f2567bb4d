package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTolerance(t *testing.T) {
	raw := []byte("Here is the JSON:\n```json\n" + `{
		"full_name":               "Jane Doe",
		"email":                   " JANE@example.com ",
		"phone":                   441234567,
		"github":                  null,
		"website":                 true,
		"education":               {"degree": "MSc", "institution": "ETH", "start_date": 2015},
		"professional_experience": [
			{"title": "Engineer", "company": "Acme", "start_date": "2019-03"},
			"not an object",
			42,
			{"title": ["Lead", "Architect"], "company": "Initech"}
		],
		"languages":    null,
		"publications": [{"title": "Paper", "journal": "J", "authors": ["A. One", "", "B. Two"]}]
	}` + "\n```")

	r, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", r.FullName.String())
	assert.Equal(t, "JANE@example.com", r.Email.Trimmed())
	assert.Equal(t, "441234567", r.Phone.String())
	assert.Equal(t, "", r.GitHub.String())
	assert.Equal(t, "true", r.Website.String())

	require.Len(t, r.Education, 1)
	assert.Equal(t, "2015", r.Education[0].StartDate.String())

	require.Len(t, r.Experience, 2)
	assert.Equal(t, "Engineer", r.Experience[0].Title.String())
	assert.Equal(t, "Lead, Architect", r.Experience[1].Title.String())

	assert.Empty(t, r.Languages)
	require.Len(t, r.Publications, 1)
	assert.Equal(t, "A. One, B. Two", r.Publications[0].Authors.String())
}

func TestDecodeEmptyObject(t *testing.T) {
	r, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, r.FullName)
	assert.Empty(t, r.Experience)
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"", "no json here", "[1,2,3]", `{"full_name": "x"`} {
		_, err := Decode([]byte(raw))
		assert.Error(t, err, raw)
	}
}
