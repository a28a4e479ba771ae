package task

import (
	"strings"
	"unicode/utf8"
)

const MaxTitleLength = 200
const MaxDescriptionLength = 1000

type Field string

const FieldTitle Field = "title"
const FieldDescription Field = "description"
const FieldPriority Field = "priority"
const FieldPatch Field = "patch"

type Reason string

const ReasonEmptyTitle Reason = "EmptyTitle"
const ReasonTitleTooLong Reason = "TitleTooLong"
const ReasonDescriptionTooLong Reason = "DescriptionTooLong"
const ReasonInvalidPriority Reason = "InvalidPriority"
const ReasonNoChanges Reason = "NoChanges"

// ValidationErrors ошибки по полям, чтобы клиент мог показать их рядом с инпутом.
type ValidationErrors map[Field]Reason

func (v ValidationErrors) Add(field Field, reason Reason) ValidationErrors {
	if v == nil {
		v = make(ValidationErrors)
	}
	v[field] = reason
	return v
}

func (v ValidationErrors) Has(field Field) bool {
	_, ok := v[field]
	return ok
}

func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

type Normalized struct {
	Title       string
	Description *string
}

// Validate нормализует title/description. Пустое после trim описание
// превращается в nil и ошибкой не считается.
func Validate(title string, description *string) (Normalized, ValidationErrors) {
	var errs ValidationErrors
	var res Normalized

	var reason Reason
	res.Title, reason = normalizeTitle(title)
	if reason != "" {
		errs = errs.Add(FieldTitle, reason)
	}

	res.Description, reason = normalizeDescription(description)
	if reason != "" {
		errs = errs.Add(FieldDescription, reason)
	}

	return res, errs
}

func normalizeTitle(title string) (string, Reason) {
	t := strings.TrimSpace(title)
	switch n := utf8.RuneCountInString(t); {
	case n == 0:
		return t, ReasonEmptyTitle
	case n > MaxTitleLength:
		return t, ReasonTitleTooLong
	}
	return t, ""
}

func normalizeDescription(description *string) (*string, Reason) {
	if description == nil {
		return nil, ""
	}
	d := strings.TrimSpace(*description)
	if utf8.RuneCountInString(d) > MaxDescriptionLength {
		return nil, ReasonDescriptionTooLong
	}
	if d == "" {
		return nil, ""
	}
	return &d, ""
}

// ValidateCreate проверяет вход и подставляет priority=medium по умолчанию.
func ValidateCreate(in CreateInput) (CreateInput, ValidationErrors) {
	norm, errs := Validate(in.Title, in.Description)

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		errs = errs.Add(FieldPriority, ReasonInvalidPriority)
	}

	return CreateInput{
		Title:       norm.Title,
		Description: norm.Description,
		Priority:    priority,
		DueDate:     in.DueDate,
	}, errs
}

// ValidatePatch проверяет только переданные поля.
// Описание из одних пробелов означает очистку поля.
func ValidatePatch(p Patch) (Patch, ValidationErrors) {
	var errs ValidationErrors
	if p.IsEmpty() {
		return p, errs.Add(FieldPatch, ReasonNoChanges)
	}

	res := p
	if p.Title != nil {
		title, reason := normalizeTitle(*p.Title)
		if reason != "" {
			errs = errs.Add(FieldTitle, reason)
		}
		res.Title = &title
	}

	if p.Description != nil {
		description, reason := normalizeDescription(p.Description)
		if reason != "" {
			errs = errs.Add(FieldDescription, reason)
		}
		res.Description = description
		res.ClearDescription = description == nil
	}

	if p.Priority != nil && !p.Priority.Valid() {
		errs = errs.Add(FieldPriority, ReasonInvalidPriority)
	}

	return res, errs
}
