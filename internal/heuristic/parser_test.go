package heuristic

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

var wellFormedEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,7}$`)

func TestParseCardText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		validate func(t *testing.T, c entity.StructuredContact)
	}{
		{
			name:  "title split with domain company",
			input: "John Smith\nPresident - Acme.io\n+1 415 555 0100\njohn@acme.io",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "John Smith", c.Name)
				assert.Equal(t, "President", c.JobTitle)
				assert.Equal(t, "Acme", c.Company)
				assert.Equal(t, "14155550100", c.Phone)
				assert.Equal(t, "john@acme.io", c.Email)
				assert.Equal(t, "-", c.PhoneSecondary)
				assert.Equal(t, "-", c.EmailSecondary)
			},
		},
		{
			name:  "whitespace only input",
			input: "  \n\t\n   ",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Empty(t, c.Name)
				assert.Empty(t, c.JobTitle)
				assert.Empty(t, c.Company)
				assert.Empty(t, c.Website)
				assert.Empty(t, c.Phone)
				assert.Empty(t, c.Email)
				assert.Empty(t, c.Address)
				assert.Nil(t, c.ConfidenceScore)
				assert.Equal(t, "-", c.PhoneSecondary)
				assert.Equal(t, "-", c.EmailSecondary)
			},
		},
		{
			name:  "two emails keep document order",
			input: "Jane Doe\njane@globex.com\nsales@globex.com",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "jane@globex.com", c.Email)
				assert.Equal(t, "sales@globex.com", c.EmailSecondary)
			},
		},
		{
			name:  "lowercase single word never becomes the name",
			input: "acme",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Empty(t, c.Name)
			},
		},
		{
			name:  "capitalized single word scores above the rejection line",
			input: "Acme",
			validate: func(t *testing.T, c entity.StructuredContact) {
				// +3 capitalized, -5 single word = -2
				assert.Equal(t, "Acme", c.Name)
			},
		},
		{
			name:  "title after company in split line",
			input: "Initech @ Senior Engineer\nPeter Gibbons",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "Senior Engineer", c.JobTitle)
				assert.Equal(t, "Initech", c.Company)
				assert.Equal(t, "Peter Gibbons", c.Name)
			},
		},
		{
			name:  "legal marker line becomes company verbatim",
			input: "Maria Lopez\nGlobex Holdings LLC\nMarketing Manager",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "Maria Lopez", c.Name)
				assert.Equal(t, "Globex Holdings LLC", c.Company)
				assert.Equal(t, "Marketing Manager", c.JobTitle)
			},
		},
		{
			name:  "legal marker line after company is set is not a name",
			input: "John Smith\nCEO - Globex\nAcme Holdings Inc",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "John Smith", c.Name)
				assert.Equal(t, "Globex", c.Company)
				assert.Equal(t, "Ceo", c.JobTitle)
			},
		},
		{
			name:  "plain title line is title cased",
			input: "SOFTWARE ENGINEER\nAlan Turing",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "Software Engineer", c.JobTitle)
				assert.Equal(t, "Alan Turing", c.Name)
			},
		},
		{
			name:  "misread plus sign is corrected",
			input: "Ravi Kumar\n491 987 654 3210",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "+919876543210", c.Phone)
			},
		},
		{
			name:  "short phone-like match is ignored",
			input: "Ext 5550100\nAda Lovelace",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Empty(t, c.Phone)
				assert.Equal(t, "Ada Lovelace", c.Name)
			},
		},
		{
			name:  "website label stripped and company backfilled from host",
			input: "Grace Hopper\nw:www.hopperlabs.net",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "www.hopperlabs.net", c.Website)
				assert.Equal(t, "Hopperlabs", c.Company)
			},
		},
		{
			name:  "email lines are not websites",
			input: "grace@hopperlabs.net",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "grace@hopperlabs.net", c.Email)
				assert.Empty(t, c.Website)
			},
		},
		{
			name:  "company guessed from trailing .com contact line",
			input: "Linus Ek\nwww.example.com",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "Example", c.Company)
				assert.Equal(t, "www.example.com", c.Website)
			},
		},
		{
			name:  "junk label prefix is stripped and penalized",
			input: "Tel: ada byron",
			validate: func(t *testing.T, c entity.StructuredContact) {
				// -2 prefix, +5 multi word, no capitals = 3
				assert.Equal(t, "Ada Byron", c.Name)
			},
		},
		{
			name:  "higher scoring candidate wins",
			input: "innovate daily\nKatherine Johnson",
			validate: func(t *testing.T, c entity.StructuredContact) {
				assert.Equal(t, "Katherine Johnson", c.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCardText(tt.input)
			tt.validate(t, got)
		})
	}
}

func TestParseCardTextIsDeterministic(t *testing.T) {
	input := "Dr. Emmett Brown\nChief Scientist @ Brown Labs Inc\n(555) 123-4567\ndoc@brownlabs.io\nhttps://brownlabs.io"
	first := ParseCardText(input)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, ParseCardText(input))
	}
}

func TestParseCardTextEmailWellFormed(t *testing.T) {
	inputs := []string{
		"|john_doe@acme.io|",
		"contact: [sales@globex.com]",
		"a@b.c",
		"no email here",
		"x@y.technology",
	}
	for _, in := range inputs {
		c := ParseCardText(in)
		if c.Email != "" {
			assert.Regexp(t, wellFormedEmail, c.Email, "input %q", in)
		}
		if c.EmailSecondary != entity.Sentinel {
			assert.Regexp(t, wellFormedEmail, c.EmailSecondary, "input %q", in)
		}
	}
}

func TestScoreName(t *testing.T) {
	tests := []struct {
		line      string
		wantOK    bool
		wantScore int
		wantText  string
	}{
		{line: "John Smith", wantOK: true, wantScore: 11, wantText: "John Smith"},
		{line: "Johnathan Smithson", wantOK: true, wantScore: 13, wantText: "Johnathan Smithson"},
		{line: "acme", wantOK: true, wantScore: -5, wantText: "Acme"},
		{line: "Acme", wantOK: true, wantScore: -2, wantText: "Acme"},
		{line: "eircom: web Jo Li", wantOK: true, wantScore: 7, wantText: "Jo Li"},
		{line: "[a] Main Street", wantOK: true, wantScore: 11, wantText: "Main Street"},
		{line: "No: Ab Cd", wantOK: true, wantScore: 4, wantText: "No: Ab Cd"},
		{line: "Email: x", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c, ok := scoreName(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantScore, c.Score)
			assert.Equal(t, tt.wantText, c.Text)
		})
	}
}

func TestPickNameRejectsLowScores(t *testing.T) {
	_, ok := pickName([]FieldCandidate{{Text: "Acme", Score: -5}, {Text: "Foo", Score: -7}})
	assert.False(t, ok)

	best, ok := pickName([]FieldCandidate{{Text: "First", Score: 4}, {Text: "Second", Score: 4}})
	require.True(t, ok)
	assert.Equal(t, "First", best.Text)
}
