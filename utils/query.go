package utils

import (
	"net/http"
	"strings"
	"time"

	"okrproject/errs"
	"okrproject/models"
	"okrproject/okr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseFilter reads an objective filter from the query string. Absent
// parameters and the value "all" leave a dimension unfiltered.
//
//	?category=Team&department=Backend&quarter=Q2&from=2024-01-01&to=2024-06-30
//	&search=launch&created_by=<id>&owner=<id>&status=In%20Progress
func ParseFilter(r *http.Request) (okr.Filter, error) {
	q := r.URL.Query()
	f := okr.Filter{
		Category:   strings.TrimSpace(q.Get("category")),
		Department: strings.TrimSpace(q.Get("department")),
		Quarter:    strings.ToUpper(strings.TrimSpace(q.Get("quarter"))),
		Search:     strings.TrimSpace(q.Get("search")),
		Status:     strings.TrimSpace(q.Get("status")),
	}

	if !isAll(f.Category) && !models.ValidCategory(f.Category) {
		return f, errs.Validation("category", "unknown category %q", f.Category)
	}
	if !isAll(f.Department) && !models.ValidDepartment(f.Department) {
		return f, errs.Validation("department", "unknown department %q", f.Department)
	}
	if !isAll(f.Quarter) && okr.QuarterMonths(f.Quarter) == nil {
		return f, errs.Validation("quarter", "quarter must be one of Q1, Q2, Q3, Q4")
	}
	if !isAll(f.Status) && !okr.ValidStatus(f.Status) {
		return f, errs.Validation("status", "unknown status %q", f.Status)
	}

	var err error
	if f.From, err = optionalDate(q.Get("from"), "from"); err != nil {
		return f, err
	}
	if f.To, err = optionalDate(q.Get("to"), "to"); err != nil {
		return f, err
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, errs.Validation("to", "to must not be before from")
	}

	if f.CreatedBy, err = optionalID(q.Get("created_by"), "created_by"); err != nil {
		return f, err
	}
	if f.Owner, err = optionalID(q.Get("owner"), "owner"); err != nil {
		return f, err
	}
	return f, nil
}

// ParseDirectoryFilter reads ?search=&department=&designation=.
func ParseDirectoryFilter(r *http.Request) okr.DirectoryFilter {
	q := r.URL.Query()
	return okr.DirectoryFilter{
		Search:      strings.TrimSpace(q.Get("search")),
		Department:  strings.TrimSpace(q.Get("department")),
		Designation: strings.TrimSpace(q.Get("designation")),
	}
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, okr.All)
}

func optionalDate(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := models.ParseDate(raw)
	if err != nil {
		return nil, errs.Validation(field, "expected a date like 2024-01-31")
	}
	return &t, nil
}

func optionalID(raw, field string) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, okr.All) {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, errs.Validation(field, "invalid id %q", raw)
	}
	return &id, nil
}
