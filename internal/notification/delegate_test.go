package notification_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/oauth2"

	"github.com/frahmantamala/request-management/internal"
	"github.com/frahmantamala/request-management/internal/notification"
)

var _ = Describe("OAuthDelegate", func() {
	var (
		tokenServer *httptest.Server
		tokenStatus int
		tokenBody   string
	)

	newDelegate := func() *notification.OAuthDelegate {
		cfg := &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Endpoint: oauth2.Endpoint{
				TokenURL: tokenServer.URL + "/token",
			},
		}
		return notification.NewOAuthDelegate(cfg, 5*time.Second, slog.Default())
	}

	BeforeEach(func() {
		tokenStatus = http.StatusOK
		tokenBody = `{"access_token":"short-lived-access","token_type":"Bearer","expires_in":3600}`
		tokenServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tokenStatus)
			w.Write([]byte(tokenBody))
		}))
	})

	AfterEach(func() {
		tokenServer.Close()
	})

	Describe("AccessTokenFor", func() {
		It("should exchange the refresh grant for an access token", func() {
			token, err := newDelegate().AccessTokenFor("refresh-grant-abc")

			Expect(err).NotTo(HaveOccurred())
			Expect(token.AccessToken).To(Equal("short-lived-access"))
		})

		It("should treat an empty grant as revoked", func() {
			token, err := newDelegate().AccessTokenFor("")

			Expect(err).To(Equal(internal.ErrDelegationRevoked))
			Expect(token).To(BeNil())
		})

		It("should map a provider rejection to DelegationRevoked", func() {
			tokenStatus = http.StatusBadRequest
			tokenBody = `{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`

			token, err := newDelegate().AccessTokenFor("revoked-grant")

			Expect(err).To(Equal(internal.ErrDelegationRevoked))
			Expect(token).To(BeNil())
		})

		It("should map a provider outage to UpstreamUnavailable", func() {
			tokenStatus = http.StatusBadGateway
			tokenBody = `{"error":"temporarily_unavailable"}`

			token, err := newDelegate().AccessTokenFor("refresh-grant-abc")

			Expect(err).To(HaveOccurred())
			Expect(token).To(BeNil())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamUnavailable))
		})

		It("should map an unreachable token endpoint to UpstreamUnavailable", func() {
			tokenServer.Close()

			token, err := newDelegate().AccessTokenFor("refresh-grant-abc")

			Expect(err).To(HaveOccurred())
			Expect(token).To(BeNil())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamUnavailable))
		})
	})
})
