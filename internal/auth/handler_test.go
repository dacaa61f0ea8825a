package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("AuthMiddleware", func() {
	var (
		handler  *Handler
		codec    *JWTCodec
		gate     http.Handler
		seenUser *User
	)

	ginkgo.BeforeEach(func() {
		repo := newMockIdentityRepository()
		provider := &mockConsentProvider{}
		codec = NewJWTCodec("a-shared-secret-at-least-32-bytes-long", 24*time.Hour)
		service := NewService(repo, codec, provider, slog.Default())
		handler = NewHandler(service, "http://localhost:3000")

		seenUser = nil
		gate = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenUser, _ = UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	})

	decodeErrorCode := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		err := json.Unmarshal(rec.Body.Bytes(), &body)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return body.Error.Code
	}

	ginkgo.Context("when no token is presented", func() {
		ginkgo.It("should respond 401 TOKEN_MISSING and not call the next handler", func() {
			req := httptest.NewRequest(http.MethodGet, "/requests", nil)
			rec := httptest.NewRecorder()

			gate.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeErrorCode(rec)).To(gomega.Equal("TOKEN_MISSING"))
			gomega.Expect(seenUser).To(gomega.BeNil())
		})

		ginkgo.It("should treat a non-bearer scheme as missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/requests", nil)
			req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
			rec := httptest.NewRecorder()

			gate.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Context("when the token fails verification", func() {
		ginkgo.It("should respond 403 INVALID_TOKEN for garbage", func() {
			req := httptest.NewRequest(http.MethodGet, "/requests", nil)
			req.Header.Set("Authorization", "Bearer not-a-token")
			rec := httptest.NewRecorder()

			gate.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decodeErrorCode(rec)).To(gomega.Equal("INVALID_TOKEN"))
			gomega.Expect(seenUser).To(gomega.BeNil())
		})

		ginkgo.It("should respond 403 TOKEN_EXPIRED for an expired token", func() {
			expiredCodec := NewJWTCodec("a-shared-secret-at-least-32-bytes-long", -1*time.Hour)
			token, err := expiredCodec.Issue(&Identity{ID: 1, Email: "fadhil@mail.com"}, "")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/requests", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			gate.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decodeErrorCode(rec)).To(gomega.Equal("TOKEN_EXPIRED"))
		})
	})

	ginkgo.Context("when the token is valid", func() {
		ginkgo.It("should attach the token identity to the context", func() {
			token, err := codec.Issue(&Identity{ID: 9, Email: "fadhil@mail.com", Name: "Fadhil"}, "")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/requests", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			gate.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seenUser).ToNot(gomega.BeNil())
			gomega.Expect(seenUser.ID).To(gomega.Equal("9"))
			gomega.Expect(seenUser.Email).To(gomega.Equal("fadhil@mail.com"))
			gomega.Expect(seenUser.Name).To(gomega.Equal("Fadhil"))
		})
	})
})

var _ = ginkgo.Describe("OAuth handlers", func() {
	var handler *Handler

	ginkgo.BeforeEach(func() {
		repo := newMockIdentityRepository()
		provider := &mockConsentProvider{}
		codec := NewJWTCodec("a-shared-secret-at-least-32-bytes-long", 24*time.Hour)
		service := NewService(repo, codec, provider, slog.Default())
		handler = NewHandler(service, "http://localhost:3000")
	})

	ginkgo.Describe("GoogleLogin", func() {
		ginkgo.It("should set a state cookie and redirect to the consent URL", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
			rec := httptest.NewRecorder()

			handler.GoogleLogin(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusTemporaryRedirect))

			var state string
			for _, cookie := range rec.Result().Cookies() {
				if cookie.Name == stateCookieName {
					state = cookie.Value
				}
			}
			gomega.Expect(state).ToNot(gomega.BeEmpty())
			gomega.Expect(rec.Header().Get("Location")).To(gomega.ContainSubstring("state=" + state))
		})
	})

	ginkgo.Describe("GoogleCallback", func() {
		ginkgo.It("should reject a state mismatch", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=forged&code=abc", nil)
			req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "genuine"})
			rec := httptest.NewRecorder()

			handler.GoogleCallback(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("should reject a missing state cookie", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&code=abc", nil)
			rec := httptest.NewRecorder()

			handler.GoogleCallback(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("GetUser", func() {
		ginkgo.It("should return the context identity", func() {
			user := &User{ID: "9", Email: "fadhil@mail.com", Name: "Fadhil"}
			req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
			req = req.WithContext(ContextWithUser(req.Context(), user))
			rec := httptest.NewRecorder()

			handler.GetUser(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var got User
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(gomega.Succeed())
			gomega.Expect(got.Email).To(gomega.Equal("fadhil@mail.com"))
		})

		ginkgo.It("should respond 401 when no identity is attached", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
			rec := httptest.NewRecorder()

			handler.GetUser(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
