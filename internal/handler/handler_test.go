package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
	"github.com/Shivanand-hulikatti/lucybot/internal/repository"
)

type stubRecruitments struct {
	items   []*model.Instance
	listErr error
	status  model.Status
}

func (s *stubRecruitments) Get(_ context.Context, id string) (*model.Instance, error) {
	for _, in := range s.items {
		if in.ID == id {
			return in, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubRecruitments) List(_ context.Context, status model.Status) ([]*model.Instance, error) {
	s.status = status
	return s.items, s.listErr
}

func fullParty(t *testing.T) *model.Instance {
	t.Helper()
	in, err := model.NewInstance("r1", model.Descriptor{
		Content: "極タイタン", Type: model.TypeFree4, OrganizerID: "org", OrganizerName: "Lucy",
	}, "Slot1", time.Now())
	require.NoError(t, err)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, in.OccupySeat(in.Seats[i+1].Role, model.Member{ID: id, Name: id}))
	}
	return in
}

func serve(t *testing.T, svc Recruitments, target string) (*httptest.ResponseRecorder, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	router := NewRouter(NewRecruitmentHandler(svc), zap.New(core))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec, logs
}

func TestHealthCheck(t *testing.T) {
	rec, logs := serve(t, &stubRecruitments{}, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/health", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestListRecruitments(t *testing.T) {
	svc := &stubRecruitments{items: []*model.Instance{fullParty(t)}}
	rec, _ := serve(t, svc, "/recruitments?status=open")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusOpen, svc.status)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0]["id"])
	assert.Equal(t, "full", got[0]["state"])
	assert.EqualValues(t, 4, got[0]["occupancy"])
	assert.EqualValues(t, 4, got[0]["capacity"])
}

func TestListRecruitmentsEmptyAndErrors(t *testing.T) {
	rec, _ := serve(t, &stubRecruitments{}, "/recruitments")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec, _ = serve(t, &stubRecruitments{}, "/recruitments?status=archived")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, &stubRecruitments{listErr: errors.New("db down")}, "/recruitments")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to list recruitments"}`, rec.Body.String())
}

func TestGetRecruitment(t *testing.T) {
	in := fullParty(t)
	require.NoError(t, in.Cancel("org"))
	svc := &stubRecruitments{items: []*model.Instance{in}}

	rec, _ := serve(t, svc, "/recruitments/r1")
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "cancelled", got["state"])

	rec, _ = serve(t, svc, "/recruitments/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
