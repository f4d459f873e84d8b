package filters

import (
	"strings"
	"testing"
	"time"

	"hrpulse/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id         string
	severity   string
	status     string
	department string
	title      string
	date       time.Time
}

var rows = []row{
	{"r1", "high", "open", "dept-eng", "On-call overload", day(2024, 6, 12)},
	{"r2", "low", "resolved", "dept-eng", "Slow CI", day(2024, 2, 20)},
	{"r3", "high", "resolved", "dept-sales", "Commission confusion", day(2023, 11, 5)},
	{"r4", "critical", "open", "dept-ops", "Missed one-on-ones", day(2024, 6, 30)},
	{"r5", "low", "in_progress", "dept-sales", "Territory overlap", day(2022, 1, 1)},
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ids(items []row) []string {
	out := make([]string, 0, len(items))
	for _, r := range items {
		out = append(out, r.id)
	}
	return out
}

func newRowSet() *Set {
	return NewSet(
		Enum("severity", "low", "medium", "high", "critical"),
		Enum("status", "open", "in_progress", "resolved"),
		Enum("department"),
		Search("search"),
	)
}

func rowPredicates(v Values) []Predicate[row] {
	return []Predicate[row]{
		Equal(v["severity"], All, func(r row) string { return r.severity }),
		Equal(v["status"], All, func(r row) string { return r.status }),
		Equal(v["department"], All, func(r row) string { return r.department }),
		Contains(v["search"], func(r row) []string { return []string{r.title} }),
	}
}

func TestApplyIsConjunctionOfFieldMatches(t *testing.T) {
	selection := Values{"severity": "high", "status": "open", "department": "dept-eng", "search": "on"}
	names := []string{"severity", "status", "department", "search"}

	for mask := 0; mask < 1<<len(names); mask++ {
		v := Values{"severity": All, "status": All, "department": All, "search": ""}
		for i, name := range names {
			if mask&(1<<i) != 0 {
				v[name] = selection[name]
			}
		}

		got := Apply(rows, rowPredicates(v)...)

		var want []row
		for _, r := range rows {
			if (v["severity"] == All || r.severity == v["severity"]) &&
				(v["status"] == All || r.status == v["status"]) &&
				(v["department"] == All || r.department == v["department"]) &&
				(v["search"] == "" || strings.Contains(strings.ToLower(r.title), v["search"])) {
				want = append(want, r)
			}
		}
		assert.Equal(t, ids(want), ids(got), "mask %b", mask)
	}
}

func TestSentinelRemovesOnlyThatConstraint(t *testing.T) {
	s := newRowSet()
	_, err := s.Apply(Values{"severity": "high", "department": "dept-eng"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids(Apply(rows, rowPredicates(s.Values())...)))

	_, err = s.Apply(Values{"severity": All})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids(Apply(rows, rowPredicates(s.Values())...)))
	assert.Equal(t, "dept-eng", s.Values()["department"])
}

func TestApplyReportsChangedFields(t *testing.T) {
	s := newRowSet()

	changed, err := s.Apply(Values{"severity": "high", "status": All, "search": "ci"})
	require.NoError(t, err)
	require.Len(t, changed, 2)
	assert.Equal(t, "severity", changed[0].Name)
	assert.Equal(t, "search", changed[1].Name)
	assert.True(t, changed[1].FreeText)

	changed, err = s.Apply(Values{"severity": "high"})
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestApplyRejectsUnknownOrInvalidAtomically(t *testing.T) {
	s := newRowSet()

	_, err := s.Apply(Values{"severity": "high", "colour": "red"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = s.Apply(Values{"status": "escalated", "severity": "low"})
	require.Error(t, err)

	assert.True(t, s.IsDefault())
}

func TestResetRestoresDefaultsAndIsNoOpAtDefaults(t *testing.T) {
	s := NewSet(Enum("type"), PeriodField("period", Last12Months), Search("search"))
	defaults := s.Values()

	assert.False(t, s.Reset())
	assert.Equal(t, defaults, s.Values())

	_, err := s.Apply(Values{"type": "training", "period": All, "search": "lead"})
	require.NoError(t, err)
	assert.False(t, s.IsDefault())

	assert.True(t, s.Reset())
	assert.Equal(t, Values{"type": All, "period": Last12Months, "search": ""}, s.Values())
	assert.False(t, s.Reset())
}

func TestValuesIsACopy(t *testing.T) {
	s := newRowSet()
	v := s.Values()
	v["severity"] = "high"

	assert.Equal(t, All, s.Values()["severity"])
}

func TestActive(t *testing.T) {
	f := Enum("status")
	assert.False(t, Active(Values{"status": All}, f))
	assert.False(t, Active(Values{}, f))
	assert.True(t, Active(Values{"status": "open"}, f))
}

func TestActiveFields(t *testing.T) {
	s := newRowSet()
	assert.Empty(t, s.ActiveFields())

	_, err := s.Apply(Values{"search": "ci", "severity": "low"})
	require.NoError(t, err)
	assert.Equal(t, []string{"severity", "search"}, s.ActiveFields())

	_, err = s.Apply(Values{"severity": All})
	require.NoError(t, err)
	assert.Equal(t, []string{"search"}, s.ActiveFields())

	periods := NewSet(PeriodField("period", Last12Months))
	assert.Equal(t, []string{"period"}, periods.ActiveFields())
}

func TestContainsIsCaseInsensitive(t *testing.T) {
	pred := Contains("  SLOW ", func(r row) []string { return []string{r.title, r.department} })
	assert.Equal(t, []string{"r2"}, ids(Apply(rows, pred)))
	assert.Nil(t, Contains("   ", func(r row) []string { return nil }))
}

func TestWithinWindow(t *testing.T) {
	ref := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	date := func(r row) time.Time { return r.date }

	assert.Equal(t, []string{"r1", "r4"}, ids(Apply(rows, Within(Last30Days, ref, date))))
	assert.Equal(t, []string{"r1", "r2", "r4"}, ids(Apply(rows, Within(Last6Months, ref, date))))
	assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, ids(Apply(rows, Within(Last12Months, ref, date))))
	assert.Nil(t, Within(All, ref, date))

	from, to, ok := Window(Last3Months, ref)
	require.True(t, ok)
	assert.Equal(t, day(2024, 4, 1), from)
	assert.Equal(t, day(2024, 7, 1).Add(-time.Nanosecond), to)
}

func TestWindowBoundaries(t *testing.T) {
	cases := []struct {
		period string
		ref    time.Time
		from   time.Time
	}{
		{Last6Months, day(2024, 6, 30), day(2024, 1, 1)},
		{Last6Months, day(2024, 8, 31), day(2024, 3, 1)},
		{Last12Months, day(2024, 6, 30), day(2023, 7, 1)},
		{Last3Months, day(2024, 2, 29), day(2023, 12, 1)},
		{Last30Days, day(2024, 6, 30), day(2024, 6, 1)},
		{Last30Days, day(2024, 3, 1), day(2024, 2, 1)},
	}

	for _, tc := range cases {
		t.Run(tc.period+" from "+tc.ref.Format(time.DateOnly), func(t *testing.T) {
			from, to, ok := Window(tc.period, tc.ref)
			require.True(t, ok)
			assert.Equal(t, tc.from, from)
			assert.Equal(t, tc.ref.AddDate(0, 0, 1).Add(-time.Nanosecond), to)
		})
	}

	from, to, _ := Window(Last30Days, day(2024, 6, 30))
	assert.Equal(t, 30, int(to.Sub(from).Round(time.Hour).Hours()/24))
}
