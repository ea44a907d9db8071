package sms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/academy"
)

// Teacher dispatch scopes
const (
	ScopeAll        = "ALL"
	ScopeIndividual = "INDIVIDUAL"
)

var (
	NowFunc = time.Now // mockable

	ErrNoStudents = core.NewNotFoundError("students")
	ErrNoTeachers = core.NewNotFoundError("teachers")
)

type (
	StudentDispatch struct {
		BatchID      string `json:"batch_id"`
		TemplateID   string `json:"template_id"`
		ResultID     string `json:"result_id"`
		StudentID    string `json:"student_id,omitempty"`
		CoachingName string `json:"coaching_name,omitempty"`
		SenderID     string `json:"sender_id,omitempty"`
	}

	TeacherDispatch struct {
		Scope     string `json:"scope"`
		TeacherID string `json:"teacher_id,omitempty"` // internal id or teacher code
		Message   string `json:"message"`
		SenderID  string `json:"sender_id,omitempty"`
	}

	PreviewRequest struct {
		Body         string `json:"body"`
		TemplateID   string `json:"template_id,omitempty"`
		StudentID    string `json:"student_id,omitempty"`
		ResultID     string `json:"result_id,omitempty"`
		CoachingName string `json:"coaching_name,omitempty"`
	}

	Preview struct {
		Text    string        `json:"text"`
		Context RenderContext `json:"context"`
	}

	// Delivery is the outcome for one recipient.
	Delivery struct {
		Recipient string `json:"recipient"` // student code or teacher label
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		Status    string `json:"status"`
		RequestID string `json:"request_id,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	// Summary is returned by a dispatch that ran; per-recipient failures are reported in Results.
	Summary struct {
		OK      bool       `json:"ok"`
		Count   int        `json:"count"`
		Results []Delivery `json:"results"`
	}

	DispatcherDeps struct {
		Templates    TemplateRepository
		Academy      academy.Repository
		Gateway      Gateway
		Logs         LogRepository
		Logger       core.Logger
		CoachingName string
		SenderID     string
		SendTimeout  time.Duration
	}

	// Dispatcher fans a message out to students or teachers, one gateway call and one log entry per recipient.
	Dispatcher struct {
		DispatcherDeps
	}
)

func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	if deps.SendTimeout <= 0 {
		deps.SendTimeout = 15 * time.Second
	}
	return &Dispatcher{DispatcherDeps: deps}
}

func NewDispatcherDeps(conf *core.Config) DispatcherDeps {
	return DispatcherDeps{
		CoachingName: conf.CoachingName,
		SenderID:     conf.SMS.SenderID,
		SendTimeout:  conf.SMS.Timeout,
	}
}

// checkIDs reports every malformed identifier. Optional ones may be empty.
func checkIDs(required map[string]string, optional map[string]string) error {
	var flds []core.FieldError
	for field, id := range required {
		if id == "" {
			flds = append(flds, core.FieldError{Field: field, Error: "this field is required"})
		} else if !core.IsValidID(id) {
			flds = append(flds, core.FieldError{Field: field, Error: "invalid identifier"})
		}
	}
	for field, id := range optional {
		if id != "" && !core.IsValidID(id) {
			flds = append(flds, core.FieldError{Field: field, Error: "invalid identifier"})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (d *Dispatcher) coachingName(override string) string {
	if name := core.CleanString(override); name != "" {
		return name
	}
	return d.CoachingName
}

func (d *Dispatcher) senderID(override string) string {
	if id := core.CleanString(override); id != "" {
		return id
	}
	return d.SenderID
}

// SendToStudents renders the template for every student of the batch (or the one given) and sends it.
func (d *Dispatcher) SendToStudents(ctx context.Context, req StudentDispatch) (Summary, error) {
	err := checkIDs(
		map[string]string{"batch_id": req.BatchID, "template_id": req.TemplateID, "result_id": req.ResultID},
		map[string]string{"student_id": req.StudentID},
	)
	if err != nil {
		return Summary{}, err
	}

	tmpl, err := d.Templates.GetTemplate(ctx, req.TemplateID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "finding template")
	}
	result, err := d.Academy.GetResult(ctx, req.ResultID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "finding result")
	}
	batch, err := d.Academy.GetBatch(ctx, req.BatchID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "finding batch")
	}
	students, err := d.resolveStudents(ctx, batch.ID, req.StudentID)
	if err != nil {
		return Summary{}, err
	}

	coachingName := d.coachingName(req.CoachingName)
	senderID := d.senderID(req.SenderID)
	deliveries := make([]Delivery, 0, len(students))
	for i := range students {
		student := students[i]
		entry := LogEntry{
			Audience:    AudienceStudent,
			BatchID:     batch.ID,
			BatchName:   batch.Name,
			StudentID:   student.ID,
			StudentCode: student.Code,
			TemplateID:  tmpl.ID,
			SenderID:    senderID,
			Phone:       student.GuardianPhone,
		}
		if entry.Phone != "" {
			entry.Message = Render(tmpl.Body, RenderContext{CoachingName: coachingName, Student: &student, Result: &result})
		}
		deliveries = append(deliveries, d.deliver(ctx, entry, student.Code, student.Name))
	}
	return Summary{OK: true, Count: len(deliveries), Results: deliveries}, nil
}

func (d *Dispatcher) resolveStudents(ctx context.Context, batchID, studentID string) ([]academy.Student, error) {
	if studentID == "" {
		students, err := d.Academy.FilterStudents(ctx, academy.StudentFilter{BatchID: batchID})
		if err != nil {
			return nil, errors.Wrap(err, "filtering students")
		}
		if len(students) == 0 {
			return nil, ErrNoStudents
		}
		return students, nil
	}

	student, err := d.Academy.GetStudent(ctx, studentID)
	if err != nil {
		if errors.Cause(err) == academy.ErrStudentNotFound {
			return nil, ErrNoStudents
		}
		return nil, errors.Wrap(err, "finding student")
	}
	if student.BatchID != batchID {
		return nil, ErrNoStudents
	}
	return []academy.Student{student}, nil
}

// SendToTeachers sends the message, as is, to one or all non-suspended teachers.
func (d *Dispatcher) SendToTeachers(ctx context.Context, req TeacherDispatch) (Summary, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Summary{}, core.NewValidationError(nil, core.FieldError{Field: "message", Error: "this field is required"})
	}
	scope := strings.ToUpper(core.CleanString(req.Scope))
	if scope == "" {
		scope = ScopeAll
	}

	var teachers []academy.Teacher
	switch scope {
	case ScopeAll:
		var err error
		teachers, err = d.Academy.FilterTeachers(ctx, academy.TeacherFilter{ExcludeSuspended: true})
		if err != nil {
			return Summary{}, errors.Wrap(err, "filtering teachers")
		}
	case ScopeIndividual:
		ref := core.CleanString(req.TeacherID)
		if ref == "" {
			return Summary{}, core.NewValidationError(nil, core.FieldError{Field: "teacher_id", Error: "this field is required"})
		}
		teacher, err := d.findTeacher(ctx, ref)
		if err != nil {
			return Summary{}, err
		}
		if teacher != nil && !teacher.IsSuspended() {
			teachers = append(teachers, *teacher)
		}
	default:
		return Summary{}, core.NewValidationError(nil, core.FieldError{Field: "scope", Error: "scope must be one of ALL or INDIVIDUAL"})
	}
	if len(teachers) == 0 {
		return Summary{}, ErrNoTeachers
	}

	senderID := d.senderID(req.SenderID)
	deliveries := make([]Delivery, 0, len(teachers))
	for _, teacher := range teachers {
		entry := LogEntry{
			Audience:     AudienceTeacher,
			TeacherID:    teacher.ID,
			TeacherLabel: teacher.Label(),
			SenderID:     senderID,
			Phone:        teacher.Phone,
			Message:      req.Message,
		}
		deliveries = append(deliveries, d.deliver(ctx, entry, teacher.Label(), teacher.Name))
	}
	return Summary{OK: true, Count: len(deliveries), Results: deliveries}, nil
}

// findTeacher looks the teacher up by id, then by code. A miss returns nil.
func (d *Dispatcher) findTeacher(ctx context.Context, ref string) (*academy.Teacher, error) {
	if core.IsValidID(ref) {
		teacher, err := d.Academy.GetTeacher(ctx, ref)
		if err == nil {
			return &teacher, nil
		}
		if errors.Cause(err) != academy.ErrTeacherNotFound {
			return nil, errors.Wrap(err, "finding teacher")
		}
	}
	teacher, err := d.Academy.GetTeacherByCode(ctx, ref)
	if err != nil {
		if errors.Cause(err) == academy.ErrTeacherNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding teacher by code")
	}
	return &teacher, nil
}

// deliver sends one prepared entry (unless it has no phone) and appends its log entry.
// Nothing here fails the dispatch: gateway and log errors are reported and absorbed.
func (d *Dispatcher) deliver(ctx context.Context, entry LogEntry, recipient, name string) Delivery {
	if entry.Phone == "" {
		entry.Status = StatusSkipNoPhone
	} else {
		sendCtx, cancel := context.WithTimeout(ctx, d.SendTimeout)
		res := d.Gateway.Send(sendCtx, entry.Phone, entry.Message, entry.SenderID)
		cancel()

		if res.OK {
			entry.Status = StatusSent
			entry.ProviderRequestID = res.RequestID
		} else {
			entry.Status = StatusFailed
			entry.Error = res.Error
			if entry.Error == "" {
				entry.Error = "sms gateway failure"
			}
			d.Logger.Warn(fmt.Sprintf("sms to %s failed: %s", recipient, entry.Error), map[string]interface{}{
				"audience": entry.Audience, "recipient": recipient, "phone": entry.Phone,
			})
		}
	}

	entry.ID = core.NewID()
	entry.SentAt = NowFunc().UTC()
	if _, err := d.Logs.AppendLog(ctx, entry); err != nil {
		d.Logger.Error(fmt.Sprintf("appending sms log: %v", err), errors.Wrap(err, "appending sms log"))
	}

	return Delivery{
		Recipient: recipient,
		Name:      name,
		Phone:     entry.Phone,
		Status:    entry.Status,
		RequestID: entry.ProviderRequestID,
		Error:     entry.Error,
	}
}

// Preview renders a body (or a stored template) against an optional student and result.
func (d *Dispatcher) Preview(ctx context.Context, req PreviewRequest) (Preview, error) {
	if err := checkIDs(nil, map[string]string{
		"template_id": req.TemplateID, "student_id": req.StudentID, "result_id": req.ResultID,
	}); err != nil {
		return Preview{}, err
	}

	body := req.Body
	if strings.TrimSpace(body) == "" {
		if req.TemplateID == "" {
			return Preview{}, core.NewValidationError(nil, core.FieldError{Field: "body", Error: "this field is required"})
		}
		tmpl, err := d.Templates.GetTemplate(ctx, req.TemplateID)
		if err != nil {
			return Preview{}, errors.Wrap(err, "finding template")
		}
		body = tmpl.Body
	}

	rc := RenderContext{CoachingName: d.coachingName(req.CoachingName)}
	if req.StudentID != "" {
		student, err := d.Academy.GetStudent(ctx, req.StudentID)
		if err != nil {
			return Preview{}, errors.Wrap(err, "finding student")
		}
		rc.Student = &student
	}
	if req.ResultID != "" {
		result, err := d.Academy.GetResult(ctx, req.ResultID)
		if err != nil {
			return Preview{}, errors.Wrap(err, "finding result")
		}
		rc.Result = &result
	}
	return Preview{Text: Render(body, rc), Context: rc}, nil
}
