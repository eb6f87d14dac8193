package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license_backend/internal/api"
	"license_backend/internal/feature/license/domain/entity"
	"license_backend/internal/feature/license/transport/handler"
	"license_backend/internal/feature/license/usecase"
	"license_backend/internal/platform/session"
)

// mockLicenseUsecase はLicenseUsecaseインターフェースのモック実装です。
type mockLicenseUsecase struct {
	ExtractFunc func(ctx context.Context, croppedPath string) (entity.Fields, error)
	VerifyFunc  func(ctx context.Context, fields entity.Fields) (*entity.VerificationResult, error)
}

func (m *mockLicenseUsecase) Extract(ctx context.Context, croppedPath string) (entity.Fields, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, croppedPath)
	}
	return entity.Fields{}, usecase.ErrNoCroppedImage
}

func (m *mockLicenseUsecase) Verify(ctx context.Context, fields entity.Fields) (*entity.VerificationResult, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, fields)
	}
	return &entity.VerificationResult{Outcome: entity.OutcomeDenied}, nil
}

// setupRouter はセッションミドルウェア付きのテスト用ルーターを構築します。
func setupRouter(uc *mockLicenseUsecase, sessions session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewLicenseHandler(uc, sessions)
	r := gin.New()
	r.Use(session.Middleware())
	r.POST("/verify", h.Verify)
	r.GET("/result", h.Result)
	return r
}

// withSession はテスト用セッションクッキーを付与します。
func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "session-001"})
	return req
}

func TestLicenseHandler_Verify_Extract(t *testing.T) {
	t.Run("success: empty body triggers extraction", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.Save(context.Background(), "session-001",
			&session.State{CroppedImagePath: "static/uploads/cropped_card.jpg"}))

		var gotPath string
		uc := &mockLicenseUsecase{
			ExtractFunc: func(ctx context.Context, croppedPath string) (entity.Fields, error) {
				gotPath = croppedPath
				return entity.Fields{DLNumber: "DL-1", Name: "Taro Yamada", ValidTill: "2030-01-01"}, nil
			},
		}

		w := httptest.NewRecorder()
		req := withSession(httptest.NewRequest(http.MethodPost, "/verify", nil))
		setupRouter(uc, sessions).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "static/uploads/cropped_card.jpg", gotPath)
		assert.JSONEq(t,
			`{"status":"success","license_data":{"dl_number":"DL-1","name":"Taro Yamada","valid_till":"2030-01-01"}}`,
			w.Body.String())

		// 抽出結果がセッションへ記録されていること
		st, err := sessions.Get(context.Background(), "session-001")
		require.NoError(t, err)
		require.NotNil(t, st.LicenseData)
		assert.Equal(t, "DL-1", st.LicenseData.DLNumber)
	})

	t.Run("error: no document in session", func(t *testing.T) {
		uc := &mockLicenseUsecase{}
		w := httptest.NewRecorder()
		req := withSession(httptest.NewRequest(http.MethodPost, "/verify", nil))
		setupRouter(uc, session.NewMemoryStore()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"status":"error","message":"No document detected"}`, w.Body.String())
	})

	t.Run("fieldless JSON object also triggers extraction", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		require.NoError(t, sessions.Save(context.Background(), "session-001",
			&session.State{CroppedImagePath: "static/uploads/cropped_card.jpg"}))

		uc := &mockLicenseUsecase{
			ExtractFunc: func(ctx context.Context, croppedPath string) (entity.Fields, error) {
				return entity.Fields{}, nil
			},
			VerifyFunc: func(ctx context.Context, fields entity.Fields) (*entity.VerificationResult, error) {
				t.Fatal("verify must not be called for a fieldless body")
				return nil, nil
			},
		}

		w := httptest.NewRecorder()
		req := withSession(httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(uc, sessions).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLicenseHandler_Verify_Submit(t *testing.T) {
	t.Run("success: submitted values reach the usecase and session", func(t *testing.T) {
		sessions := session.NewMemoryStore()
		// 抽出時の値はA1。ユーザーがA2へ編集して送信した想定。
		require.NoError(t, sessions.Save(context.Background(), "session-001", &session.State{
			LicenseData: &api.LicenseData{DLNumber: "A1", Name: "Taro", ValidTill: "2030-01-01"},
		}))

		var verified entity.Fields
		uc := &mockLicenseUsecase{
			VerifyFunc: func(ctx context.Context, fields entity.Fields) (*entity.VerificationResult, error) {
				verified = fields
				return &entity.VerificationResult{Outcome: entity.OutcomeSuccess, IsValid: true, ExistsInDB: true}, nil
			},
		}

		body := `{"dl_number":"A2","name":"Taro","valid_till":"2030-01-01"}`
		w := httptest.NewRecorder()
		req := withSession(httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(body)))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(uc, sessions).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())

		// 送信された最新の値が使われること（抽出時のA1ではなくA2）
		assert.Equal(t, "A2", verified.DLNumber)

		st, err := sessions.Get(context.Background(), "session-001")
		require.NoError(t, err)
		assert.Equal(t, "A2", st.LicenseData.DLNumber)
		assert.True(t, st.Verified)
		assert.True(t, st.IsValid)
		assert.True(t, st.ExistsInDB)
	})

	t.Run("denied outcome is still a successful submission", func(t *testing.T) {
		uc := &mockLicenseUsecase{
			VerifyFunc: func(ctx context.Context, fields entity.Fields) (*entity.VerificationResult, error) {
				return &entity.VerificationResult{Outcome: entity.OutcomeDenied}, nil
			},
		}

		body := `{"dl_number":"A1","name":"Taro","valid_till":"2030-01-01"}`
		w := httptest.NewRecorder()
		req := withSession(httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(body)))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(uc, session.NewMemoryStore()).ServeHTTP(w, req)

		// 照合の成否は結果ページが提示する。送信自体は成功。
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	})

	t.Run("error: malformed JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := withSession(httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(`{"dl_number":`)))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(&mockLicenseUsecase{}, session.NewMemoryStore()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"status":"error","message":"Invalid request body"}`, w.Body.String())
	})
}

func TestLicenseHandler_Result(t *testing.T) {
	data := &api.LicenseData{DLNumber: "DL-1", Name: "Taro Yamada", ValidTill: "2030-01-01"}

	tests := []struct {
		name     string
		state    *session.State
		query    string
		expected api.ResultPageData
	}{
		{
			name:     "verified and matched: success with fields",
			state:    &session.State{LicenseData: data, Verified: true, IsValid: true, ExistsInDB: true},
			expected: api.ResultPageData{ResultType: "success", Name: "Taro Yamada", DLNumber: "DL-1", ValidTill: "2030-01-01"},
		},
		{
			name:     "expired license: expired without fields",
			state:    &session.State{LicenseData: data, Verified: true, IsValid: false, ExistsInDB: true},
			expected: api.ResultPageData{ResultType: "expired"},
		},
		{
			name:     "no registry match: denied",
			state:    &session.State{LicenseData: data, Verified: true, IsValid: true, ExistsInDB: false},
			expected: api.ResultPageData{ResultType: "denied"},
		},
		{
			name:     "no session state: denied (fail closed)",
			state:    nil,
			expected: api.ResultPageData{ResultType: "denied"},
		},
		{
			name:     "not yet verified: denied (fail closed)",
			state:    &session.State{LicenseData: data},
			expected: api.ResultPageData{ResultType: "denied"},
		},
		{
			name:     "override with query flag: success",
			state:    &session.State{LicenseData: data, Override: true},
			query:    "?verified=true",
			expected: api.ResultPageData{ResultType: "success", Name: "Taro Yamada", DLNumber: "DL-1", ValidTill: "2030-01-01"},
		},
		{
			name:     "query flag without session override: denied",
			state:    &session.State{LicenseData: data},
			query:    "?verified=true",
			expected: api.ResultPageData{ResultType: "denied"},
		},
		{
			name:     "session override without query flag: computed outcome",
			state:    &session.State{LicenseData: data, Override: true},
			expected: api.ResultPageData{ResultType: "denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := session.NewMemoryStore()
			if tt.state != nil {
				require.NoError(t, sessions.Save(context.Background(), "session-001", tt.state))
			}

			w := httptest.NewRecorder()
			req := withSession(httptest.NewRequest(http.MethodGet, "/result"+tt.query, nil))
			setupRouter(&mockLicenseUsecase{}, sessions).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var got api.ResultPageData
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}
