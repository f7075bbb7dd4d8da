package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/envelope-budget/internal"
	"github.com/frahmantamala/envelope-budget/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

const testSecret = "test-secret"

func signToken(secret, subject string) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	Expect(err).NotTo(HaveOccurred())
	return signed
}

var _ = Describe("UserContext", func() {
	var (
		seenUserID string
		handler    http.Handler
	)

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = internal.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	BeforeEach(func() {
		seenUserID = ""
	})

	Context("with a JWT secret configured", func() {
		BeforeEach(func() {
			cfg := internal.AuthConfig{JWTSecret: testSecret}
			handler = middleware.UserContext(cfg)(capture)
		})

		It("resolves the user from the token subject", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(testSecret, "user-1"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(seenUserID).To(Equal("user-1"))
		})

		It("rejects a request without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(seenUserID).To(BeEmpty())

			var body map[string]map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["error"]).To(HaveKeyWithValue("code", "MISSING_IDENTITY"))
		})

		It("rejects a token signed with another secret", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			req.Header.Set("Authorization", "Bearer "+signToken("other-secret", "user-1"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))

			var body map[string]map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["error"]).To(HaveKeyWithValue("code", "INVALID_TOKEN"))
		})

		It("rejects an expired token", func() {
			claims := jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			}
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			signed, err := token.SignedString([]byte(testSecret))
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			req.Header.Set("Authorization", "Bearer "+signed)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a token without a subject", func() {
			claims := jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			signed, err := token.SignedString([]byte(testSecret))
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			req.Header.Set("Authorization", "Bearer "+signed)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("ignores X-User-ID even when header identity is allowed", func() {
			cfg := internal.AuthConfig{JWTSecret: testSecret, AllowHeaderIdentity: true}
			handler = middleware.UserContext(cfg)(capture)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			req.Header.Set("X-User-ID", "user-1")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(seenUserID).To(BeEmpty())
		})
	})

	Context("without a JWT secret", func() {
		It("accepts X-User-ID when header identity is allowed", func() {
			cfg := internal.AuthConfig{AllowHeaderIdentity: true}
			handler = middleware.UserContext(cfg)(capture)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			req.Header.Set("X-User-ID", "  user-1  ")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(seenUserID).To(Equal("user-1"))
		})

		It("rejects X-User-ID when header identity is disabled", func() {
			cfg := internal.AuthConfig{}
			handler = middleware.UserContext(cfg)(capture)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			req.Header.Set("X-User-ID", "user-1")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a blank X-User-ID", func() {
			cfg := internal.AuthConfig{AllowHeaderIdentity: true}
			handler = middleware.UserContext(cfg)(capture)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			req.Header.Set("X-User-ID", "   ")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
