// internal/utils/validator.go
package utils

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/unetra-global/member-portal-sub000/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterValidation("article_tag", validateArticleTag)
	validate.RegisterValidation("article_status", validateArticleStatus)
	validate.RegisterValidation("membership_tier", validateMembershipTier)
	validate.RegisterValidation("min_words", validateMinWords)
	validate.RegisterValidation("phone", validatePhone)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func validateArticleTag(fl validator.FieldLevel) bool {
	return models.IsArticleTag(fl.Field().String())
}

func validateArticleStatus(fl validator.FieldLevel) bool {
	return models.ArticleStatus(fl.Field().String()).IsValid()
}

func validateMembershipTier(fl validator.FieldLevel) bool {
	return models.MembershipTier(fl.Field().String()).IsValid()
}

// min_words=N requires at least N whitespace-separated words.
func validateMinWords(fl validator.FieldLevel) bool {
	minimum, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return ComputeWordCount(fl.Field().String()) >= minimum
}

func validatePhone(fl validator.FieldLevel) bool {
	phone := strings.TrimPrefix(fl.Field().String(), "+")
	if len(phone) < 7 || len(phone) > 15 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldPath(e),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

// fieldPath drops the root struct name from the namespace: "tags[1]", "content".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func getValidationMessage(e validator.FieldError) string {
	field := e.Field()
	collection := e.Kind() == reflect.Slice || e.Kind() == reflect.Array

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "url":
		return field + " must be a valid URL"
	case "min":
		if collection {
			return field + " must contain at least " + e.Param() + " item(s)"
		}
		return field + " must be at least " + e.Param() + " characters"
	case "max":
		if collection {
			return field + " must contain at most " + e.Param() + " item(s)"
		}
		return field + " must be at most " + e.Param() + " characters"
	case "min_words":
		return field + " must contain at least " + e.Param() + " words"
	case "article_tag":
		return field + " must be one of: " + strings.Join(models.ArticleTags, ", ")
	case "article_status":
		return field + " must be one of DRAFT, PUBLISHED, ARCHIVED, UNDER_REVIEW"
	case "membership_tier":
		return field + " must be one of FREE, PREMIUM, ADMIN"
	case "phone":
		return field + " must be 7-15 digits, optionally prefixed with +"
	case "eq":
		return field + " must be " + e.Param()
	case "gte":
		return field + " must be greater than or equal to " + e.Param()
	case "lte":
		return field + " must be less than or equal to " + e.Param()
	default:
		return field + " is invalid"
	}
}
