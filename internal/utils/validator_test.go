package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArticle struct {
	Title   string   `json:"title" validate:"required,min=10,max=200"`
	Content string   `json:"content" validate:"required,min_words=5"`
	Tags    []string `json:"tags" validate:"required,min=1,max=5,dive,article_tag"`
	Status  string   `json:"status" validate:"omitempty,article_status"`
	Tier    string   `json:"tier" validate:"omitempty,membership_tier"`
	Phone   string   `json:"phone" validate:"omitempty,phone"`
}

func validSample() sampleArticle {
	return sampleArticle{
		Title:   "Transfer pricing basics",
		Content: "one two three four five",
		Tags:    []string{"Transfer Pricing", "International Tax"},
		Status:  "DRAFT",
		Tier:    "PREMIUM",
		Phone:   "+919876543210",
	}
}

func fieldsOf(errs []ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Tag
	}
	return out
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, ValidateStruct(validSample()))
}

func TestValidateStructReportsFieldPaths(t *testing.T) {
	s := validSample()
	s.Title = "short"
	s.Content = "only four words here"
	s.Tags = []string{"GST", "Crypto"}
	s.Status = "DELETED"
	s.Tier = "GOLD"
	s.Phone = "12ab"

	err := ValidateStruct(s)
	require.Error(t, err)

	fields := fieldsOf(GetValidationErrors(err))
	assert.Equal(t, "min", fields["title"])
	assert.Equal(t, "min_words", fields["content"])
	assert.Equal(t, "article_tag", fields["tags[1]"])
	assert.Equal(t, "article_status", fields["status"])
	assert.Equal(t, "membership_tier", fields["tier"])
	assert.Equal(t, "phone", fields["phone"])
	assert.NotContains(t, fields, "tags[0]")
}

func TestValidateStructTagCountBounds(t *testing.T) {
	s := validSample()
	s.Tags = []string{}
	fields := fieldsOf(GetValidationErrors(ValidateStruct(s)))
	assert.Contains(t, fields, "tags")

	s.Tags = []string{"GST", "Audit", "FEMA", "Valuation", "Other", "Litigation"}
	errs := GetValidationErrors(ValidateStruct(s))
	require.Len(t, errs, 1)
	assert.Equal(t, "max", errs[0].Tag)
	assert.True(t, strings.Contains(errs[0].Message, "at most 5 item"))
}

func TestGetValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, GetValidationErrors(assert.AnError))
}
