package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license_backend/internal/api"
	"license_backend/internal/feature/admin/transport/handler"
	adminusecase "license_backend/internal/feature/admin/usecase"
	"license_backend/internal/feature/license/domain/entity"
	licenseusecase "license_backend/internal/feature/license/usecase"
	"license_backend/internal/platform/session"
)

// mockAdminUsecase はAdminUsecaseインターフェースのモック実装です。
type mockAdminUsecase struct {
	AuthenticateFunc func(ctx context.Context, password string) error
}

func (m *mockAdminUsecase) Authenticate(ctx context.Context, password string) error {
	return m.AuthenticateFunc(ctx, password)
}

// mockRegistry はLicenseRegistryインターフェースのモック実装です。
type mockRegistry struct {
	RegisterFunc func(ctx context.Context, fields entity.Fields, imagePath string) error
	ListFunc     func(ctx context.Context) ([]entity.License, error)
}

func (m *mockRegistry) Register(ctx context.Context, fields entity.Fields, imagePath string) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, fields, imagePath)
	}
	return nil
}

func (m *mockRegistry) List(ctx context.Context) ([]entity.License, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

// mockTokenGenerator はTokenGeneratorインターフェースのモック実装です。
type mockTokenGenerator struct {
	token string
	err   error
}

func (m *mockTokenGenerator) GenerateToken() (string, error) {
	return m.token, m.err
}

func passwordCheck(correct string) func(ctx context.Context, password string) error {
	return func(ctx context.Context, password string) error {
		if password != correct {
			return adminusecase.ErrIncorrectPassword
		}
		return nil
	}
}

func setupRouter(h *handler.AdminHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(session.Middleware())
	r.POST("/admin", h.Override)
	r.POST("/admin/token", h.Token)
	r.POST("/admin/licenses", h.CreateLicense)
	r.GET("/admin/licenses", h.ListLicenses)
	return r
}

func overrideRequest(password string) *http.Request {
	form := url.Values{"password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "session-001"})
	return req
}

func TestAdminHandler_Override(t *testing.T) {
	admin := &mockAdminUsecase{AuthenticateFunc: passwordCheck("secret")}
	data := &api.LicenseData{DLNumber: "DL-1", Name: "Taro", ValidTill: "2020-01-01"}

	t.Run("success: registers license and marks session", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.Save(context.Background(), "session-001",
			&session.State{LicenseData: data, CroppedImagePath: "static/uploads/cropped_card.jpg"}))

		var registered entity.Fields
		registry := &mockRegistry{
			RegisterFunc: func(ctx context.Context, fields entity.Fields, imagePath string) error {
				registered = fields
				assert.Equal(t, "static/uploads/cropped_card.jpg", imagePath)
				return nil
			},
		}
		h := handler.NewAdminHandler(admin, registry, &mockTokenGenerator{}, sessions)

		w := httptest.NewRecorder()
		setupRouter(h).ServeHTTP(w, overrideRequest("secret"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
		assert.Equal(t, "DL-1", registered.DLNumber)

		st, err := sessions.Get(context.Background(), "session-001")
		require.NoError(t, err)
		assert.True(t, st.Override)
	})

	t.Run("success: duplicate license is tolerated", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.Save(context.Background(), "session-001", &session.State{LicenseData: data}))

		registry := &mockRegistry{
			RegisterFunc: func(ctx context.Context, fields entity.Fields, imagePath string) error {
				return licenseusecase.ErrLicenseAlreadyExists
			},
		}
		h := handler.NewAdminHandler(admin, registry, &mockTokenGenerator{}, sessions)

		w := httptest.NewRecorder()
		setupRouter(h).ServeHTTP(w, overrideRequest("secret"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	})

	t.Run("error: incorrect password", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		h := handler.NewAdminHandler(admin, &mockRegistry{}, &mockTokenGenerator{}, sessions)

		w := httptest.NewRecorder()
		setupRouter(h).ServeHTTP(w, overrideRequest("wrong"))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"status":"error","message":"Incorrect password"}`, w.Body.String())

		// 認証失敗時はセッションにオーバーライドが記録されないこと
		_, err := sessions.Get(context.Background(), "session-001")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("error: registry failure", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.Save(context.Background(), "session-001", &session.State{LicenseData: data}))

		registry := &mockRegistry{
			RegisterFunc: func(ctx context.Context, fields entity.Fields, imagePath string) error {
				return errors.New("db down")
			},
		}
		h := handler.NewAdminHandler(admin, registry, &mockTokenGenerator{}, sessions)

		w := httptest.NewRecorder()
		setupRouter(h).ServeHTTP(w, overrideRequest("secret"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"status":"error","message":"Verification failed"}`, w.Body.String())
	})

	t.Run("success: no license data still grants override", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		registry := &mockRegistry{
			RegisterFunc: func(ctx context.Context, fields entity.Fields, imagePath string) error {
				t.Fatal("register must not be called without license data")
				return nil
			},
		}
		h := handler.NewAdminHandler(admin, registry, &mockTokenGenerator{}, sessions)

		w := httptest.NewRecorder()
		setupRouter(h).ServeHTTP(w, overrideRequest("secret"))

		assert.Equal(t, http.StatusOK, w.Code)
		st, err := sessions.Get(context.Background(), "session-001")
		require.NoError(t, err)
		assert.True(t, st.Override)
	})
}

func TestAdminHandler_Token(t *testing.T) {
	admin := &mockAdminUsecase{AuthenticateFunc: passwordCheck("secret")}

	tests := []struct {
		name         string
		body         string
		generator    *mockTokenGenerator
		expectedCode int
		expectedBody string
	}{
		{
			name:         "success",
			body:         `{"password":"secret"}`,
			generator:    &mockTokenGenerator{token: "signed-token"},
			expectedCode: http.StatusOK,
			expectedBody: `{"token":"signed-token"}`,
		},
		{
			name:         "error: wrong password",
			body:         `{"password":"wrong"}`,
			generator:    &mockTokenGenerator{},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"Incorrect password"}`,
		},
		{
			name:         "error: missing password",
			body:         `{}`,
			generator:    &mockTokenGenerator{},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"invalid request"}`,
		},
		{
			name:         "error: generator failure",
			body:         `{"password":"secret"}`,
			generator:    &mockTokenGenerator{err: errors.New("no secret configured")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"token generation failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewAdminHandler(admin, &mockRegistry{}, tt.generator, session.NewMemoryStore())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/token", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			setupRouter(h).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAdminHandler_Licenses(t *testing.T) {
	admin := &mockAdminUsecase{AuthenticateFunc: passwordCheck("secret")}

	t.Run("create success", func(t *testing.T) {
		registry := &mockRegistry{}
		h := handler.NewAdminHandler(admin, registry, &mockTokenGenerator{}, session.NewMemoryStore())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/admin/licenses",
			strings.NewReader(`{"dl_number":"DL-2","name":"Hanako","valid_till":"2031-05-01"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"message":"ok"}`, w.Body.String())
	})

	t.Run("create duplicate", func(t *testing.T) {
		registry := &mockRegistry{
			RegisterFunc: func(ctx context.Context, fields entity.Fields, imagePath string) error {
				return licenseusecase.ErrLicenseAlreadyExists
			},
		}
		h := handler.NewAdminHandler(admin, registry, &mockTokenGenerator{}, session.NewMemoryStore())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/admin/licenses",
			strings.NewReader(`{"dl_number":"DL-2","name":"Hanako","valid_till":"2031-05-01"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"License already exists in database"}`, w.Body.String())
	})

	t.Run("list", func(t *testing.T) {
		registry := &mockRegistry{
			ListFunc: func(ctx context.Context) ([]entity.License, error) {
				return []entity.License{
					{DLNumber: "DL-1", Name: "Taro", ValidTill: "2030-01-01"},
					{DLNumber: "DL-2", Name: "Hanako", ValidTill: "2031-05-01"},
				}, nil
			},
		}
		h := handler.NewAdminHandler(admin, registry, &mockTokenGenerator{}, session.NewMemoryStore())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/licenses", nil)
		setupRouter(h).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`[{"dl_number":"DL-1","name":"Taro","valid_till":"2030-01-01"},{"dl_number":"DL-2","name":"Hanako","valid_till":"2031-05-01"}]`,
			w.Body.String())
	})
}
