package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_ComputesSignatureFrom(t *testing.T) {
	tests := []struct {
		designation string
		want        model.Signer
	}{
		{"Intern", model.SignerHareesh},
		{"design intern", model.SignerHareesh},
		{"Freelancer", model.SignerFounder},
		{"Senior Employee", model.SignerFounder},
		{"Accountant", model.SignerAdmin},
		{"", model.SignerAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.designation, func(t *testing.T) {
			f := newFixture(t)
			req := f.submit(t, Creator{ID: "u1", Name: "N", Role: "employee", Designation: tt.designation},
				model.RequestTypeLeave, leavePayload())
			assert.Equal(t, tt.want, req.SignatureFrom)
		})
	}
}

func TestSubmit_Defaults(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, employee, model.RequestTypeReport, map[string]any{"reportTitle": "Monthly"})

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Equal(t, model.TargetAdmin, req.Target)
	assert.Equal(t, employee.Name, req.CreatedBy)
	assert.Equal(t, employee.ID, req.CreatedByID)
	assert.Equal(t, employee.Role, req.CreatedByRole)
	assert.Equal(t, employee.Designation, req.CreatedByDesignation)
	assert.False(t, req.CreatedAt.IsZero())
	assert.Equal(t, model.ReportPayload{ReportTitle: "Monthly"}, req.Payload)

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.Payload, stored.Payload)
}

func TestSubmit_Validation(t *testing.T) {
	validFile := &model.UploadedFile{Name: "a.pdf", Size: 3, MimeType: "application/pdf",
		Content: base64.StdEncoding.EncodeToString([]byte("pdf"))}

	tests := []struct {
		name    string
		creator Creator
		dto     SubmitRequestDTO
		msg     string
	}{
		{"missing creator", Creator{}, SubmitRequestDTO{Type: model.RequestTypeReport, Title: "t",
			Payload: json.RawMessage(`{"reportTitle":"x"}`)}, "creator"},
		{"unknown type", employee, SubmitRequestDTO{Type: "expense", Title: "t",
			Payload: json.RawMessage(`{}`)}, "unknown request type"},
		{"blank title", employee, SubmitRequestDTO{Type: model.RequestTypeReport, Title: "  ",
			Payload: json.RawMessage(`{"reportTitle":"x"}`)}, "title"},
		{"target all", employee, SubmitRequestDTO{Type: model.RequestTypeReport, Title: "t", Target: model.TargetAll,
			Payload: json.RawMessage(`{"reportTitle":"x"}`)}, "target"},
		{"missing payload", employee, SubmitRequestDTO{Type: model.RequestTypeReport, Title: "t"}, "payload"},
		{"leave fields", employee, SubmitRequestDTO{Type: model.RequestTypeLeave, Title: "t",
			Payload: json.RawMessage(`{"leaveType":"sick"}`)}, "fromDate, toDate, reason"},
		{"ta amount", employee, SubmitRequestDTO{Type: model.RequestTypeTA, Title: "t",
			Payload: json.RawMessage(`{"description":"cab"}`)}, "amount"},
		{"ta amount object", employee, SubmitRequestDTO{Type: model.RequestTypeTA, Title: "t",
			Payload: json.RawMessage(`{"amount":{"value":1}}`)}, "invalid payload"},
		{"proposal amount", employee, SubmitRequestDTO{Type: model.RequestTypeProposal, Title: "t",
			Payload: json.RawMessage(`{"projectTitle":"x"}`)}, "projectAmount"},
		{"recruitment position", employee, SubmitRequestDTO{Type: model.RequestTypeRecruitment, Title: "t",
			Payload: json.RawMessage(`{}`)}, "position"},
		{"certificate type", employee, SubmitRequestDTO{Type: model.RequestTypeCertificate, Title: "t",
			Payload: json.RawMessage(`{"purpose":"visa"}`)}, "certificateType"},
		{"file not base64", employee, SubmitRequestDTO{Type: model.RequestTypeReport, Title: "t",
			Payload:      json.RawMessage(`{"reportTitle":"x"}`),
			UploadedFile: &model.UploadedFile{Name: "a.pdf", Content: "%%%"}}, "base64"},
		{"file too large", employee, SubmitRequestDTO{Type: model.RequestTypeReport, Title: "t",
			Payload:      json.RawMessage(`{"reportTitle":"x"}`),
			UploadedFile: &model.UploadedFile{Name: "a.pdf", Content: strings.Repeat("A", MaxUploadedFileSize+4)}}, "exceeds"},
		{"file without name", employee, SubmitRequestDTO{Type: model.RequestTypeReport, Title: "t",
			Payload:      json.RawMessage(`{"reportTitle":"x"}`),
			UploadedFile: &model.UploadedFile{Content: validFile.Content}}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.requests.Submit(context.Background(), tt.creator, tt.dto)
			requireKind(t, err, KindBadRequest)
			assert.Contains(t, err.Error(), tt.msg)

			_, total, err := f.requests.GetByTarget(context.Background(), RequestQuery{Target: "all"})
			require.NoError(t, err)
			assert.Zero(t, total)
		})
	}

	t.Run("valid file kept verbatim", func(t *testing.T) {
		f := newFixture(t)
		req, err := f.requests.Submit(context.Background(), employee, SubmitRequestDTO{
			Type: model.RequestTypeReport, Title: "t", Target: model.TargetFounder,
			Payload: json.RawMessage(`{"reportTitle":"x"}`), UploadedFile: validFile,
		})
		require.NoError(t, err)
		assert.Equal(t, model.TargetFounder, req.Target)

		stored, err := f.requests.GetByID(context.Background(), req.ID)
		require.NoError(t, err)
		assert.Equal(t, validFile, stored.UploadedFile)
	})
}

func TestGetByTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.submit(t, employee, model.RequestTypeLeave, leavePayload())
	second := f.submit(t, intern, model.RequestTypeReport, map[string]any{"reportTitle": "weekly"})
	third := f.submit(t, employee, model.RequestTypeCertificate, map[string]any{"certificateType": "salary"})

	// employee leave moves to the founder queue
	_, err := f.act(first.ID, ActionApprove)
	require.NoError(t, err)

	all, total, err := f.requests.GetByTarget(ctx, RequestQuery{Target: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	founder, total, err := f.requests.GetByTarget(ctx, RequestQuery{Target: "founder"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, first.ID, founder[0].ID)

	admin, total, err := f.requests.GetByTarget(ctx, RequestQuery{Target: "admin"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, third.ID, admin[0].ID)

	reports, total, err := f.requests.GetByTarget(ctx, RequestQuery{Type: "report", Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, second.ID, reports[0].ID)

	page, total, err := f.requests.GetByTarget(ctx, RequestQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	_, _, err = f.requests.GetByTarget(ctx, RequestQuery{Target: "hr"})
	requireKind(t, err, KindBadRequest)
	_, _, err = f.requests.GetByTarget(ctx, RequestQuery{Status: "archived"})
	requireKind(t, err, KindBadRequest)
	_, _, err = f.requests.GetByTarget(ctx, RequestQuery{Type: "expense"})
	requireKind(t, err, KindBadRequest)
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.submit(t, intern, model.RequestTypeLeave, leavePayload())
	f.submit(t, employee, model.RequestTypeLeave, leavePayload())

	reqs, total, err := f.requests.ListMine(ctx, intern.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, mine.ID, reqs[0].ID)

	reqs, total, err = f.requests.ListMine(ctx, "nobody", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, reqs)

	_, _, err = f.requests.ListMine(ctx, "", 1, 10)
	requireKind(t, err, KindBadRequest)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.requests.GetByID(context.Background(), "nope")
	requireKind(t, err, KindNotFound)

	_, err = f.requests.GetByID(context.Background(), "")
	requireKind(t, err, KindBadRequest)
}
