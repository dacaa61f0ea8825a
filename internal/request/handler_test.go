package request_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/request-management/internal"
	"github.com/frahmantamala/request-management/internal/auth"
	"github.com/frahmantamala/request-management/internal/request"
)

type mockRequestService struct {
	created    *request.Request
	listed     []*request.Request
	decided    *request.Request
	err        error
	lastActor  *auth.User
	lastID     string
	lastDecide request.DecideRequestDTO
}

func (m *mockRequestService) CreateRequest(actor *auth.User, dto request.CreateRequestDTO) (*request.Request, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return m.created, nil
}

func (m *mockRequestService) ListRequests(actor *auth.User) ([]*request.Request, error) {
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return m.listed, nil
}

func (m *mockRequestService) DecideRequest(actor *auth.User, requestID string, dto request.DecideRequestDTO) (*request.Request, error) {
	m.lastActor = actor
	m.lastID = requestID
	m.lastDecide = dto
	if m.err != nil {
		return nil, m.err
	}
	return m.decided, nil
}

var _ = Describe("RequestHandler", func() {
	var (
		handler *request.Handler
		service *mockRequestService
		actor   *auth.User
	)

	withUser := func(req *http.Request) *http.Request {
		return req.WithContext(auth.ContextWithUser(req.Context(), actor))
	}

	BeforeEach(func() {
		service = &mockRequestService{}
		handler = request.NewHandler(service)
		actor = &auth.User{ID: "1", Email: "fadhil@mail.com", Name: "Fadhil"}
	})

	Describe("CreateRequest", func() {
		It("should respond 201 with the created request", func() {
			service.created = &request.Request{ID: "req-1", Status: request.StatusPending}
			body := `{"title":"Annual leave","type":"Leave","superior":{"email":"padil@mail.com"}}`
			req := withUser(httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body)))
			rec := httptest.NewRecorder()

			handler.CreateRequest(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(service.lastActor).To(Equal(actor))

			var got request.Request
			Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
			Expect(got.ID).To(Equal("req-1"))
			Expect(got.Status).To(Equal(request.StatusPending))
		})

		It("should respond 401 without an authenticated user", func() {
			req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{}`))
			rec := httptest.NewRecorder()

			handler.CreateRequest(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should respond 400 for a malformed body", func() {
			req := withUser(httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader("{not json")))
			rec := httptest.NewRecorder()

			handler.CreateRequest(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should map validation failures from the service", func() {
			service.err = internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
			req := withUser(httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{}`)))
			rec := httptest.NewRecorder()

			handler.CreateRequest(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ListRequests", func() {
		It("should respond 200 with the caller's requests", func() {
			service.listed = []*request.Request{
				{ID: "req-1"},
				{ID: "req-2"},
			}
			req := withUser(httptest.NewRequest(http.MethodGet, "/requests", nil))
			rec := httptest.NewRecorder()

			handler.ListRequests(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var got []request.Request
			Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
			Expect(got).To(HaveLen(2))
		})
	})

	Describe("DecideRequest", func() {
		newDecideRequest := func(id, body string) *http.Request {
			req := httptest.NewRequest(http.MethodPatch, "/requests/"+id+"/status", strings.NewReader(body))
			routeCtx := chi.NewRouteContext()
			routeCtx.URLParams.Add("id", id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
			return withUser(req)
		}

		It("should respond 200 with the decided request", func() {
			service.decided = &request.Request{ID: "req-1", Status: request.StatusApproved}
			rec := httptest.NewRecorder()

			handler.DecideRequest(rec, newDecideRequest("req-1", `{"status":"approved"}`))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(service.lastID).To(Equal("req-1"))
			Expect(service.lastDecide.Status).To(Equal(request.StatusApproved))
		})

		It("should respond 403 when the caller is not the superior", func() {
			service.err = internal.ErrNotSuperior
			rec := httptest.NewRecorder()

			handler.DecideRequest(rec, newDecideRequest("req-1", `{"status":"approved"}`))

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should respond 409 when the request is no longer pending", func() {
			service.err = internal.ErrInvalidTransition
			rec := httptest.NewRecorder()

			handler.DecideRequest(rec, newDecideRequest("req-1", `{"status":"rejected"}`))

			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		It("should respond 404 for an unknown request", func() {
			service.err = internal.ErrRequestNotFound
			rec := httptest.NewRecorder()

			handler.DecideRequest(rec, newDecideRequest("no-such-id", `{"status":"approved"}`))

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
