package okr

import (
	"strings"
	"time"

	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// All is the explicit "no filter" value for a string dimension.
const All = "all"

// Filter selects objectives. Dimensions combine with AND; an empty or "all"
// value, or a nil pointer, leaves that dimension unfiltered.
type Filter struct {
	Category   string
	Department string
	Quarter    string
	From       *time.Time
	To         *time.Time
	Search     string
	CreatedBy  *primitive.ObjectID
	Owner      *primitive.ObjectID
	Status     string
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}

func (f Filter) Matches(o *models.Objective) bool {
	if !isAll(f.Category) && o.Category != f.Category {
		return false
	}
	if !isAll(f.Department) && o.Department != f.Department {
		return false
	}
	if !isAll(f.Quarter) && QuarterOf(o.StartDate) != f.Quarter {
		return false
	}
	if !InDateRange(o, f.From, f.To) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(o.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.CreatedBy != nil && o.CreatedBy != *f.CreatedBy {
		return false
	}
	if f.Owner != nil && !o.HasOwner(*f.Owner) {
		return false
	}
	// Status is classified from the stored progress here rather than read from
	// the stored status, so both paths must agree.
	if !isAll(f.Status) && StatusFromProgress(o.Progress) != f.Status {
		return false
	}
	return true
}

func FilterObjectives(objectives []models.Objective, f Filter) []models.Objective {
	out := make([]models.Objective, 0, len(objectives))
	for i := range objectives {
		if f.Matches(&objectives[i]) {
			out = append(out, objectives[i])
		}
	}
	return out
}

// FilterUsersByDepartment applies only the department dimension of f.
func FilterUsersByDepartment(users []models.User, f Filter) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if isAll(f.Department) || u.Department == f.Department {
			out = append(out, u)
		}
	}
	return out
}

func AverageProgress(objectives []models.Objective) int {
	values := make([]int, 0, len(objectives))
	for _, o := range objectives {
		values = append(values, o.Progress)
	}
	return Average(values)
}

type MonthPoint struct {
	Month    string `json:"month"`
	Progress int    `json:"progress"`
}

// MonthlySeries averages the progress of the objectives active in each month.
func MonthlySeries(objectives []models.Objective, months []time.Month) []MonthPoint {
	series := make([]MonthPoint, 0, len(months))
	for _, m := range months {
		var values []int
		for i := range objectives {
			if ActiveInMonth(&objectives[i], m) {
				values = append(values, objectives[i].Progress)
			}
		}
		series = append(series, MonthPoint{Month: m.String()[:3], Progress: Average(values)})
	}
	return series
}

type Dashboard struct {
	TotalObjectives int                `json:"total_objectives"`
	Headcount       int                `json:"headcount"`
	AverageProgress int                `json:"average_progress"`
	Series          []MonthPoint       `json:"series"`
	Objectives      []models.Objective `json:"objectives"`
}

func BuildDashboard(objectives []models.Objective, users []models.User, f Filter) Dashboard {
	filtered := FilterObjectives(objectives, f)
	return Dashboard{
		TotalObjectives: len(filtered),
		Headcount:       len(FilterUsersByDepartment(users, f)),
		AverageProgress: AverageProgress(filtered),
		Series:          MonthlySeries(filtered, MonthsForFilter(f)),
		Objectives:      filtered,
	}
}

type QuarterPoint struct {
	Quarter    string `json:"quarter"`
	Individual int    `json:"individual"`
	Team       int    `json:"team"`
}

// QuarterlyCategorySeries averages progress per start quarter, split by category.
func QuarterlyCategorySeries(objectives []models.Objective) []QuarterPoint {
	individual := make(map[string][]int, 4)
	team := make(map[string][]int, 4)
	for _, o := range objectives {
		q := QuarterOf(o.StartDate)
		switch o.Category {
		case models.CategoryIndividual:
			individual[q] = append(individual[q], o.Progress)
		case models.CategoryTeam:
			team[q] = append(team[q], o.Progress)
		}
	}

	series := make([]QuarterPoint, 0, len(Quarters))
	for _, q := range Quarters {
		series = append(series, QuarterPoint{
			Quarter:    q,
			Individual: Average(individual[q]),
			Team:       Average(team[q]),
		})
	}
	return series
}

type DepartmentStat struct {
	Department      string `json:"department"`
	Objectives      int    `json:"objectives"`
	AverageProgress int    `json:"average_progress"`
}

// DepartmentBreakdown lists departments that own at least one objective, in
// the order of models.Departments.
func DepartmentBreakdown(objectives []models.Objective) []DepartmentStat {
	byDept := make(map[string][]int)
	for _, o := range objectives {
		byDept[o.Department] = append(byDept[o.Department], o.Progress)
	}

	stats := []DepartmentStat{}
	for _, d := range models.Departments {
		values, ok := byDept[d]
		if !ok {
			continue
		}
		stats = append(stats, DepartmentStat{Department: d, Objectives: len(values), AverageProgress: Average(values)})
	}
	return stats
}

type StatusStat struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func StatusBreakdown(objectives []models.Objective) []StatusStat {
	counts := make(map[string]int, len(Statuses))
	for _, o := range objectives {
		counts[StatusFromProgress(o.Progress)]++
	}
	stats := make([]StatusStat, 0, len(Statuses))
	for _, s := range Statuses {
		stats = append(stats, StatusStat{Status: s, Count: counts[s]})
	}
	return stats
}

type Report struct {
	TotalObjectives int              `json:"total_objectives"`
	AverageProgress int              `json:"average_progress"`
	Quarterly       []QuarterPoint   `json:"quarterly"`
	Departments     []DepartmentStat `json:"departments"`
	Statuses        []StatusStat     `json:"statuses"`
}

func BuildReport(objectives []models.Objective, f Filter) Report {
	filtered := FilterObjectives(objectives, f)
	return Report{
		TotalObjectives: len(filtered),
		AverageProgress: AverageProgress(filtered),
		Quarterly:       QuarterlyCategorySeries(filtered),
		Departments:     DepartmentBreakdown(filtered),
		Statuses:        StatusBreakdown(filtered),
	}
}

type DirectoryFilter struct {
	Search      string
	Department  string
	Designation string
}

func (f DirectoryFilter) Matches(u *models.User) bool {
	if !isAll(f.Department) && u.Department != f.Department {
		return false
	}
	if !isAll(f.Designation) && u.Designation != f.Designation {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	for _, field := range []string{u.Name, u.Email, u.Department, u.Designation, u.Role} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

type UserSummary struct {
	User            models.User `json:"user"`
	Objectives      int         `json:"objectives"`
	AverageProgress int         `json:"average_progress"`
}

// BuildDirectory rolls up, for every matching user, the objectives that list
// the user as an owner.
func BuildDirectory(users []models.User, objectives []models.Objective, f DirectoryFilter) []UserSummary {
	summaries := []UserSummary{}
	for i := range users {
		u := &users[i]
		if !f.Matches(u) {
			continue
		}
		var values []int
		for j := range objectives {
			if objectives[j].HasOwner(u.ID) {
				values = append(values, objectives[j].Progress)
			}
		}
		summaries = append(summaries, UserSummary{
			User:            *u,
			Objectives:      len(values),
			AverageProgress: Average(values),
		})
	}
	return summaries
}
