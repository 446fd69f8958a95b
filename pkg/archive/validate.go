package archive

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance; struct tag rules cover the base record
// shape, kind validators add the per-kind glue on top.
var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateValidator checks a create payload and returns a field-keyed
// error map, empty on success.
type CreateValidator func(*CreateRequest) map[string]string

// UpdateValidator checks a partial update payload the same way.
type UpdateValidator func(*UpdateRequest) map[string]string

func structFields(err error) map[string]string {
	fields := make(map[string]string)
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["payload"] = err.Error()
		return fields
	}
	for _, fe := range errs {
		name := jsonFieldName(fe.Field())
		switch fe.Tag() {
		case "required", "min":
			fields[name] = "is required"
		case "max":
			fields[name] = "is too long"
		default:
			fields[name] = "is invalid"
		}
	}
	return fields
}

// jsonFieldName lower-cases the leading export prefix so error keys
// match the wire field names (Title -> title, CoverImageURL -> coverImageUrl).
func jsonFieldName(field string) string {
	switch field {
	case "CoverImageURL":
		return "coverImageUrl"
	case "RelatedPersonSlug":
		return "relatedPersonSlug"
	case "RelatedFundKey":
		return "relatedFundKey"
	case "SortOrder":
		return "sortOrder"
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// baseCreateFields runs the rules shared by every kind.
func baseCreateFields(req *CreateRequest) map[string]string {
	fields := make(map[string]string)
	if err := validate.Struct(req); err != nil {
		fields = structFields(err)
	}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "is required"
	}
	if strings.TrimSpace(req.Description) == "" {
		fields["description"] = "is required"
	}
	if req.Status != "" && !req.Status.Valid() {
		fields["status"] = "must be draft, published or archived"
	}
	return fields
}

func baseUpdateFields(req *UpdateRequest) map[string]string {
	fields := make(map[string]string)
	if err := validate.Struct(req); err != nil {
		fields = structFields(err)
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		fields["title"] = "cannot be empty"
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		fields["description"] = "cannot be empty"
	}
	if req.Status != nil && !req.Status.Valid() {
		fields["status"] = "must be draft, published or archived"
	}
	return fields
}

// requireCover is the create validator for kinds whose cover image is
// mandatory.
func requireCover(req *CreateRequest) map[string]string {
	fields := baseCreateFields(req)
	if strings.TrimSpace(req.CoverImageURL) == "" {
		fields["coverImageUrl"] = "is required"
	}
	return fields
}

// testimonialCreate allows a missing cover as long as an inline media
// reference is present instead.
func testimonialCreate(req *CreateRequest) map[string]string {
	fields := baseCreateFields(req)
	if strings.TrimSpace(req.CoverImageURL) == "" && strings.TrimSpace(req.Details.MediaURL) == "" {
		fields["coverImageUrl"] = "either a cover image or a media reference is required"
	}
	return fields
}

func defaultUpdate(req *UpdateRequest) map[string]string {
	fields := baseUpdateFields(req)
	if req.CoverImageURL != nil && strings.TrimSpace(*req.CoverImageURL) == "" {
		fields["coverImageUrl"] = "cannot be cleared"
	}
	return fields
}

func testimonialUpdate(req *UpdateRequest) map[string]string {
	return baseUpdateFields(req)
}
