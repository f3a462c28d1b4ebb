package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saemahesh/webinar-ai/internal/models"
)

type fakeUserStore struct {
	users   map[uuid.UUID]*models.User
	deleted []uuid.UUID
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return u, nil
}

func (f *fakeUserStore) ListByStatus(_ context.Context, status models.Status) ([]models.UserPublic, error) {
	var list []models.UserPublic
	for _, u := range f.users {
		if u.Status == status {
			list = append(list, u.ToPublic())
		}
	}
	return list, nil
}

func (f *fakeUserStore) Approve(_ context.Context, id, _ uuid.UUID) (*models.User, error) {
	return f.GetByID(context.Background(), id)
}

func (f *fakeUserStore) Reject(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.GetByID(context.Background(), id)
}

func (f *fakeUserStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return errors.New("no rows in result set")
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUserStore) CountByStatus(_ context.Context) (map[models.Status]int, error) {
	counts := make(map[models.Status]int)
	for _, u := range f.users {
		counts[u.Status]++
	}
	return counts, nil
}

func deleteHostRouter(store *fakeUserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, nil, zap.NewNop())
	r := gin.New()
	r.DELETE("/admin/hosts/:id", h.DeleteHost)
	return r
}

func TestDeleteHost(t *testing.T) {
	hostID := uuid.New()
	adminID := uuid.New()
	store := &fakeUserStore{users: map[uuid.UUID]*models.User{
		hostID:  {ID: hostID, Email: "host@example.com", Role: models.RoleHost, Status: models.StatusApproved},
		adminID: {ID: adminID, Email: "admin@example.com", Role: models.RoleAdmin},
	}}
	r := deleteHostRouter(store)

	t.Run("deletes a host", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/admin/hosts/"+hostID.String(), nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if len(store.deleted) != 1 || store.deleted[0] != hostID {
			t.Fatalf("deleted = %v, want [%s]", store.deleted, hostID)
		}
	})

	t.Run("refuses admin accounts", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/admin/hosts/"+adminID.String(), nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
		if _, ok := store.users[adminID]; !ok {
			t.Fatal("admin account was deleted")
		}
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/admin/hosts/"+uuid.New().String(), nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/admin/hosts/not-a-uuid", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}
