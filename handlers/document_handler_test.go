package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stonebridge/family-office-portal/access"
	"github.com/stonebridge/family-office-portal/middleware"
	"github.com/stonebridge/family-office-portal/models"
	"github.com/stonebridge/family-office-portal/repositories"
)

// MockDocumentRepository is a mock implementation of repositories.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *models.Document, contentBase64 string) error {
	args := m.Called(ctx, doc, contentBase64)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetContent(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, filter repositories.DocumentFilter) ([]*models.Document, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Document), args.Error(1)
}

// MockRelationshipIndex is a mock implementation of access.RelationshipIndex
type MockRelationshipIndex struct {
	mock.Mock
}

func (m *MockRelationshipIndex) CountMeetingFacts(ctx context.Context, advisorID, familyID uuid.UUID) (int, error) {
	args := m.Called(ctx, advisorID, familyID)
	return args.Int(0), args.Error(1)
}

func (m *MockRelationshipIndex) CountMessageFacts(ctx context.Context, principalID, familyID uuid.UUID) (int, error) {
	args := m.Called(ctx, principalID, familyID)
	return args.Int(0), args.Error(1)
}

func newDocumentHandler(repo repositories.DocumentRepository, index access.RelationshipIndex) *DocumentHandler {
	logger := zap.NewNop()
	return NewDocumentHandler(repo, access.NewEngine(index, logger), logger)
}

func familyMember(familyID uuid.UUID) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    "member@example.com",
		Role:     models.RoleFamilyMember,
		FamilyID: &familyID,
		IsActive: true,
	}
}

func requestAs(user *models.User, method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func withURLParamID(req *http.Request, id uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleUploadDocument(t *testing.T) {
	familyID := uuid.New()
	user := familyMember(familyID)

	uploadBody := func(familyID uuid.UUID, content string) []byte {
		body, _ := json.Marshal(UploadDocumentRequest{
			Filename:      "q2-report.pdf",
			ContentType:   "application/pdf",
			DocumentType:  "report",
			FamilyID:      familyID,
			ContentBase64: content,
		})
		return body
	}

	t.Run("stores document for own family", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		handler := newDocumentHandler(repo, new(MockRelationshipIndex))

		content := base64.StdEncoding.EncodeToString([]byte("quarterly numbers"))
		repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Document"), content).Return(nil)

		rec := httptest.NewRecorder()
		handler.HandleUploadDocument(rec, requestAs(user, http.MethodPost, "/api/documents", uploadBody(familyID, content)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		repo.AssertExpectations(t)
	})

	t.Run("rejects upload to another family", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		handler := newDocumentHandler(repo, new(MockRelationshipIndex))

		content := base64.StdEncoding.EncodeToString([]byte("not yours"))
		rec := httptest.NewRecorder()
		handler.HandleUploadDocument(rec, requestAs(user, http.MethodPost, "/api/documents", uploadBody(uuid.New(), content)))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects invalid base64 content", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		handler := newDocumentHandler(repo, new(MockRelationshipIndex))

		rec := httptest.NewRecorder()
		handler.HandleUploadDocument(rec, requestAs(user, http.MethodPost, "/api/documents", uploadBody(familyID, "%%not-base64%%")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects unknown document type", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		handler := newDocumentHandler(repo, new(MockRelationshipIndex))

		body, _ := json.Marshal(UploadDocumentRequest{
			Filename:      "notes.txt",
			ContentType:   "text/plain",
			DocumentType:  "diary",
			FamilyID:      familyID,
			ContentBase64: base64.StdEncoding.EncodeToString([]byte("hello")),
		})
		rec := httptest.NewRecorder()
		handler.HandleUploadDocument(rec, requestAs(user, http.MethodPost, "/api/documents", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleListDocuments(t *testing.T) {
	familyID := uuid.New()
	user := familyMember(familyID)

	t.Run("member defaults to own family and allow-lists filter the result", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		handler := newDocumentHandler(repo, new(MockRelationshipIndex))

		open := models.NewDocument("open.pdf", 10, "application/pdf", models.DocumentTypeReport, familyID, uuid.New())
		restricted := models.NewDocument("restricted.pdf", 10, "application/pdf", models.DocumentTypeReport, familyID, uuid.New())
		restricted.AccessPermissions = []uuid.UUID{uuid.New()}
		shared := models.NewDocument("shared.pdf", 10, "application/pdf", models.DocumentTypeReport, familyID, uuid.New())
		shared.AccessPermissions = []uuid.UUID{user.ID}

		repo.On("List", mock.Anything, mock.MatchedBy(func(f repositories.DocumentFilter) bool {
			return f.FamilyID != nil && *f.FamilyID == familyID
		})).Return([]*models.Document{open, restricted, shared}, nil)

		rec := httptest.NewRecorder()
		handler.HandleListDocuments(rec, requestAs(user, http.MethodGet, "/api/documents", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data []DocumentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, open.ID, resp.Data[0].ID)
		assert.Equal(t, shared.ID, resp.Data[1].ID)
	})

	t.Run("advisor must name a family", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		handler := newDocumentHandler(repo, new(MockRelationshipIndex))

		advisor := &models.User{ID: uuid.New(), Role: models.RoleAdvisor, IsActive: true}
		rec := httptest.NewRecorder()
		handler.HandleListDocuments(rec, requestAs(advisor, http.MethodGet, "/api/documents", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("advisor without relations is denied", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		index := new(MockRelationshipIndex)
		handler := newDocumentHandler(repo, index)

		advisor := &models.User{ID: uuid.New(), Role: models.RoleAdvisor, IsActive: true}
		index.On("CountMeetingFacts", mock.Anything, advisor.ID, familyID).Return(0, nil)
		index.On("CountMessageFacts", mock.Anything, advisor.ID, familyID).Return(0, nil)

		rec := httptest.NewRecorder()
		handler.HandleListDocuments(rec, requestAs(advisor, http.MethodGet, "/api/documents?family_id="+familyID.String(), nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		repo.AssertNotCalled(t, "List")
	})
}

func TestHandleDownloadDocument(t *testing.T) {
	familyID := uuid.New()
	user := familyMember(familyID)

	t.Run("serves decoded content with original headers", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		handler := newDocumentHandler(repo, new(MockRelationshipIndex))

		raw := []byte("the statement body")
		doc := models.NewDocument("statement.pdf", int64(len(raw)), "application/pdf", models.DocumentTypeReport, familyID, uuid.New())
		repo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
		repo.On("GetContent", mock.Anything, doc.ID).Return(base64.StdEncoding.EncodeToString(raw), nil)

		rec := httptest.NewRecorder()
		req := withURLParamID(requestAs(user, http.MethodGet, "/api/documents/"+doc.ID.String()+"/download", nil), doc.ID)
		handler.HandleDownloadDocument(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, raw, rec.Body.Bytes())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `"statement.pdf"`)
	})

	t.Run("member of another family is denied", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		handler := newDocumentHandler(repo, new(MockRelationshipIndex))

		doc := models.NewDocument("statement.pdf", 10, "application/pdf", models.DocumentTypeReport, uuid.New(), uuid.New())
		repo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)

		rec := httptest.NewRecorder()
		req := withURLParamID(requestAs(user, http.MethodGet, "/api/documents/"+doc.ID.String()+"/download", nil), doc.ID)
		handler.HandleDownloadDocument(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		repo.AssertNotCalled(t, "GetContent")
	})

	t.Run("invalid id is rejected", func(t *testing.T) {
		repo := new(MockDocumentRepository)
		handler := newDocumentHandler(repo, new(MockRelationshipIndex))

		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", "not-a-uuid")
		req := requestAs(user, http.MethodGet, "/api/documents/not-a-uuid", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		rec := httptest.NewRecorder()
		handler.HandleGetDocument(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
