package sms

import (
	"strconv"
	"strings"

	"github.com/trezcool/coachdesk/core/academy"
)

// Placeholders
const (
	PhCoachingName = "[coaching-name]"
	PhStudentName  = "[student-name]"
	PhStudentID    = "[student-id]"
	PhStudentRoll  = "[student-roll]"
	PhMarks        = "[gain-mark/total-mark]"
	PhExamType     = "[exam-type]"
	PhExamDate     = "[exam-date]"
	PhSubject      = "[subject]"
	PhSubjects     = "[subjects]"
)

// Placeholders lists every recognized token.
var Placeholders = []string{
	PhCoachingName, PhStudentName, PhStudentID, PhStudentRoll,
	PhMarks, PhExamType, PhExamDate, PhSubject, PhSubjects,
}

// RenderContext is rebuilt for every recipient. Nil parts render as empty strings.
type RenderContext struct {
	CoachingName string           `json:"coaching_name"`
	Student      *academy.Student `json:"student,omitempty"`
	Result       *academy.Result  `json:"result,omitempty"`
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatMarks(gain, total float64) string {
	return formatNumber(gain) + "/" + formatNumber(total)
}

// values resolves every placeholder against the context.
func (rc RenderContext) values() map[string]string {
	vals := make(map[string]string, len(Placeholders))
	vals[PhCoachingName] = rc.CoachingName

	if s := rc.Student; s != nil {
		vals[PhStudentName] = s.Name
		vals[PhStudentID] = s.Code
		vals[PhStudentRoll] = s.Roll
	}

	if r := rc.Result; r != nil {
		vals[PhMarks] = formatMarks(r.Totals())
		vals[PhExamType] = r.Type
		vals[PhExamDate] = r.ExamDate

		// [subject] is the first subject, whatever the count; [subjects] lists them all.
		subjects := make([]string, 0, len(r.Subjects))
		for _, sub := range r.Subjects {
			subjects = append(subjects, sub.ClassName+"-"+formatMarks(sub.Totals()))
		}
		if len(r.Subjects) > 0 {
			vals[PhSubject] = r.Subjects[0].ClassName
		}
		vals[PhSubjects] = strings.Join(subjects, ", ")
	}

	for tok, val := range vals {
		vals[tok] = neutralize(val)
	}
	return vals
}

// neutralize turns any placeholder inside a substituted value into `(token)`, so the output never holds one.
func neutralize(val string) string {
	if !strings.Contains(val, "[") {
		return val
	}
	for _, tok := range Placeholders {
		val = strings.ReplaceAll(val, tok, "("+tok[1:len(tok)-1]+")")
	}
	return val
}

// matchPlaceholder returns the placeholder `s` starts with, if any.
func matchPlaceholder(s string) (string, bool) {
	for _, tok := range Placeholders {
		if strings.HasPrefix(s, tok) {
			return tok, true
		}
	}
	return "", false
}

// Render substitutes every placeholder of `body` in a single left-to-right pass.
// Substituted values are never rescanned. The output is trimmed.
func Render(body string, rc RenderContext) string {
	vals := rc.values()

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		if body[i] == '[' {
			if tok, ok := matchPlaceholder(body[i:]); ok {
				b.WriteString(vals[tok])
				i += len(tok)
				continue
			}
		}
		b.WriteByte(body[i])
		i++
	}
	return strings.TrimSpace(b.String())
}
