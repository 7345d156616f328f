package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"schichtbuch-backend/internal/auth"
	"schichtbuch-backend/internal/db"
	"schichtbuch-backend/internal/logger"
	"schichtbuch-backend/internal/media"
	"schichtbuch-backend/internal/model"
	"schichtbuch-backend/internal/mw"
	"schichtbuch-backend/internal/notification"
	"schichtbuch-backend/internal/store"
)

// newTestHandler builds a handler over an in-memory SQLite database, a
// throwaway media root and a worker pool that is never started, so pushes
// stay queued instead of going out.
func newTestHandler(t *testing.T) (*Handler, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB, logger.NewNop())

	mediaStorage, err := media.NewStorage(t.TempDir())
	require.NoError(t, err)

	pool := notification.NewWorkerPool(8, s, &webpush.Options{}, logger.NewNop())
	h := NewHandler(s, mediaStorage, pool, &webpush.Options{VAPIDPublicKey: "test-public-key"}, "test-secret", time.Hour, logger.NewNop())
	return h, s
}

// routerAs wires the handler routes with the given user pre-authenticated.
// A nil user simulates a request that never passed the auth middleware.
func routerAs(h *Handler, user *model.User) *gin.Engine {
	r := gin.New()
	if user != nil {
		r.Use(func(c *gin.Context) { mw.SetCurrentUser(c, user) })
	}

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)
	api.POST("/auth/password", h.ChangePassword)
	api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	api.GET("/machines", h.ListMachines)
	api.POST("/machines", h.CreateMachine)
	api.GET("/entries", h.ListEntries)
	api.POST("/entries", h.CreateEntry)
	api.GET("/entries/:id", h.GetEntry)
	api.POST("/entries/:id/updates", h.CreateUpdate)
	api.POST("/entries/:id/like", h.ToggleLike)
	api.POST("/entries/:id/spare-parts/processed", h.ToggleSparePartsProcessed)
	api.GET("/notifications", h.ListNotifications)
	api.GET("/notifications/unread-count", h.UnreadNotificationCount)
	return r
}

func seedAPIUser(t *testing.T, s store.Store, username, password string, role model.Role) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := &model.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedAPIMachine(t *testing.T, s store.Store, name string) *model.Machine {
	t.Helper()
	machine := &model.Machine{Name: name, IsActive: true}
	require.NoError(t, s.CreateMachine(context.Background(), machine))
	return machine
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func entryForm(machineID int64) url.Values {
	return url.Values{
		"date":       {time.Now().Format(dateLayout)},
		"shift":      {"F"},
		"machine_id": {fmt.Sprintf("%d", machineID)},
		"category":   {"STOER"},
		"title":      {"Pumpe defekt"},
	}
}

func createdEntryID(t *testing.T, w *httptest.ResponseRecorder) int64 {
	t.Helper()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func TestLogin(t *testing.T) {
	h, s := newTestHandler(t)
	seedAPIUser(t, s, "alice", "geheim123", model.RoleWorker)
	r := routerAs(h, nil)

	w := postJSON(r, "/api/auth/login", `{"username":"alice","password":"geheim123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	claims, err := auth.VerifyToken("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h, s := newTestHandler(t)
	user := seedAPIUser(t, s, "alice", "geheim123", model.RoleWorker)
	r := routerAs(h, nil)

	w := postJSON(r, "/api/auth/login", `{"username":"alice","password":"falsch"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Deactivated accounts cannot log in either.
	require.NoError(t, s.DB().Model(user).Update("is_active", false).Error)
	w = postJSON(r, "/api/auth/login", `{"username":"alice","password":"geheim123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateEntryUnauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)
	r := routerAs(h, nil)

	w := postForm(r, "/api/entries", entryForm(1))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateEntryValidationErrors(t *testing.T) {
	h, s := newTestHandler(t)
	worker := seedAPIUser(t, s, "worker", "geheim123", model.RoleWorker)
	r := routerAs(h, worker)

	w := postForm(r, "/api/entries", url.Values{"title": {"Nur Titel"}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "date")
	assert.Contains(t, resp.Errors, "machine")
}

func TestCreateAndGetEntry(t *testing.T) {
	h, s := newTestHandler(t)
	worker := seedAPIUser(t, s, "worker", "geheim123", model.RoleWorker)
	machine := seedAPIMachine(t, s, "Presse 1")
	r := routerAs(h, worker)

	entryID := createdEntryID(t, postForm(r, "/api/entries", entryForm(machine.ID)))

	w := get(r, fmt.Sprintf("/api/entries/%d", entryID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID         int64  `json:"id"`
		Title      string `json:"title"`
		Status     string `json:"status"`
		LikeCount  int64  `json:"like_count"`
		SpareParts *struct {
			UsedSpareParts bool `json:"used_spare_parts"`
		} `json:"spare_parts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entryID, resp.ID)
	assert.Equal(t, "Pumpe defekt", resp.Title)
	assert.Equal(t, "OFFEN", resp.Status)
	assert.NotNil(t, resp.SpareParts, "the creator sees the spare-part section")
}

func TestGetEntryNotFound(t *testing.T) {
	h, s := newTestHandler(t)
	worker := seedAPIUser(t, s, "worker", "geheim123", model.RoleWorker)
	r := routerAs(h, worker)

	w := get(r, "/api/entries/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSparePartVisibility(t *testing.T) {
	h, s := newTestHandler(t)
	creator := seedAPIUser(t, s, "creator", "geheim123", model.RoleWorker)
	other := seedAPIUser(t, s, "other", "geheim123", model.RoleWorker)
	boss := seedAPIUser(t, s, "boss", "geheim123", model.RoleSupervisor)
	machine := seedAPIMachine(t, s, "Presse 1")

	entryID := createdEntryID(t, postForm(routerAs(h, creator), "/api/entries", entryForm(machine.ID)))
	path := fmt.Sprintf("/api/entries/%d", entryID)

	sparePartsOf := func(w *httptest.ResponseRecorder) *json.RawMessage {
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			SpareParts *json.RawMessage `json:"spare_parts"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.SpareParts
	}

	assert.NotNil(t, sparePartsOf(get(routerAs(h, creator), path)), "creator")
	assert.NotNil(t, sparePartsOf(get(routerAs(h, boss), path)), "supervisor")
	assert.Nil(t, sparePartsOf(get(routerAs(h, other), path)), "uninvolved worker")

	// Contributing an update makes the section visible.
	w := postForm(routerAs(h, other), path+"/updates", url.Values{
		"comment":     {"Hab mir das angesehen"},
		"action_time": {time.Now().Add(-time.Minute).Format(time.RFC3339)},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotNil(t, sparePartsOf(get(routerAs(h, other), path)), "worker with update")
}

func TestCreateUpdateWithSparePartUsage(t *testing.T) {
	h, s := newTestHandler(t)
	worker := seedAPIUser(t, s, "worker", "geheim123", model.RoleWorker)
	machine := seedAPIMachine(t, s, "Presse 1")
	r := routerAs(h, worker)

	entryID := createdEntryID(t, postForm(r, "/api/entries", entryForm(machine.ID)))
	path := fmt.Sprintf("/api/entries/%d", entryID)

	submit := func(quantityUsed, quantityRemaining string) {
		w := postForm(r, path+"/updates", url.Values{
			"comment":            {"Dichtung getauscht"},
			"action_time":        {time.Now().Add(-time.Minute).Format(time.RFC3339)},
			"status":             {"IN_ARB"},
			"used_spare_parts":   {"true"},
			"sap_number":         {"12345"},
			"quantity_used":      {quantityUsed},
			"quantity_remaining": {quantityRemaining},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	submit("2", "")
	submit("3", "5")

	w := get(r, path)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status     string `json:"status"`
		SpareParts *struct {
			UsedSpareParts bool `json:"used_spare_parts"`
			Processed      bool `json:"processed"`
			Parts          []struct {
				SAPNumber         string `json:"sap_number"`
				QuantityUsed      int    `json:"quantity_used"`
				QuantityRemaining int    `json:"quantity_remaining"`
			} `json:"parts"`
		} `json:"spare_parts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "IN_ARB", resp.Status)
	require.NotNil(t, resp.SpareParts)
	assert.True(t, resp.SpareParts.UsedSpareParts)
	require.Len(t, resp.SpareParts.Parts, 1)
	assert.Equal(t, "12345", resp.SpareParts.Parts[0].SAPNumber)
	assert.Equal(t, 5, resp.SpareParts.Parts[0].QuantityUsed)
	assert.Equal(t, 5, resp.SpareParts.Parts[0].QuantityRemaining)
}

func TestCreateUpdateValidationErrors(t *testing.T) {
	h, s := newTestHandler(t)
	worker := seedAPIUser(t, s, "worker", "geheim123", model.RoleWorker)
	machine := seedAPIMachine(t, s, "Presse 1")
	r := routerAs(h, worker)

	entryID := createdEntryID(t, postForm(r, "/api/entries", entryForm(machine.ID)))

	w := postForm(r, fmt.Sprintf("/api/entries/%d/updates", entryID), url.Values{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "comment")
	assert.Contains(t, resp.Errors, "action_time")
}

func TestToggleSparePartsProcessed(t *testing.T) {
	h, s := newTestHandler(t)
	worker := seedAPIUser(t, s, "worker", "geheim123", model.RoleWorker)
	boss := seedAPIUser(t, s, "boss", "geheim123", model.RoleSupervisor)
	machine := seedAPIMachine(t, s, "Presse 1")

	workerRouter := routerAs(h, worker)
	entryID := createdEntryID(t, postForm(workerRouter, "/api/entries", entryForm(machine.ID)))
	path := fmt.Sprintf("/api/entries/%d", entryID)

	w := postForm(workerRouter, path+"/updates", url.Values{
		"comment":          {"Lager getauscht"},
		"action_time":      {time.Now().Add(-time.Minute).Format(time.RFC3339)},
		"used_spare_parts": {"true"},
		"sap_number":       {"90001"},
		"quantity_used":    {"1"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	processedOf := func(w *httptest.ResponseRecorder) bool {
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			SpareParts *struct {
				Processed bool `json:"processed"`
			} `json:"spare_parts"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.SpareParts)
		return resp.SpareParts.Processed
	}

	// A worker's toggle is answered with the unchanged detail, not an error.
	assert.False(t, processedOf(postForm(workerRouter, path+"/spare-parts/processed", nil)))

	bossRouter := routerAs(h, boss)
	assert.True(t, processedOf(postForm(bossRouter, path+"/spare-parts/processed", nil)))
	assert.False(t, processedOf(postForm(bossRouter, path+"/spare-parts/processed", nil)))
}

func TestToggleLike(t *testing.T) {
	h, s := newTestHandler(t)
	worker := seedAPIUser(t, s, "worker", "geheim123", model.RoleWorker)
	machine := seedAPIMachine(t, s, "Presse 1")
	r := routerAs(h, worker)

	entryID := createdEntryID(t, postForm(r, "/api/entries", entryForm(machine.ID)))
	path := fmt.Sprintf("/api/entries/%d/like", entryID)

	likeState := func(w *httptest.ResponseRecorder) (bool, int64) {
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Liked     bool  `json:"liked"`
			LikeCount int64 `json:"like_count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Liked, resp.LikeCount
	}

	liked, count := likeState(postForm(r, path, nil))
	assert.True(t, liked)
	assert.EqualValues(t, 1, count)

	liked, count = likeState(postForm(r, path, nil))
	assert.False(t, liked)
	assert.EqualValues(t, 0, count)

	w := postForm(r, "/api/entries/999/like", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMachineRequiresManager(t *testing.T) {
	h, s := newTestHandler(t)
	worker := seedAPIUser(t, s, "worker", "geheim123", model.RoleWorker)
	admin := seedAPIUser(t, s, "admin", "geheim123", model.RoleAdmin)

	w := postJSON(routerAs(h, worker), "/api/machines", `{"name":"Ofen 3"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(routerAs(h, admin), "/api/machines", `{"name":"Ofen 3","location":"Halle 1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = get(routerAs(h, worker), "/api/machines")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Machines []model.Machine `json:"machines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Machines, 1)
	assert.Equal(t, "Ofen 3", resp.Machines[0].Name)
}

func TestMentionNotificationFlow(t *testing.T) {
	h, s := newTestHandler(t)
	alice := seedAPIUser(t, s, "alice", "geheim123", model.RoleWorker)
	bob := seedAPIUser(t, s, "bob", "geheim123", model.RoleWorker)
	machine := seedAPIMachine(t, s, "Presse 1")

	form := entryForm(machine.ID)
	form.Set("description", "Hallo @bob, bitte übernehmen")
	createdEntryID(t, postForm(routerAs(h, alice), "/api/entries", form))

	// The push job for bob is queued.
	select {
	case job := <-h.pool.Jobs():
		assert.Equal(t, bob.ID, job.UserID)
	default:
		t.Fatal("expected a queued push job for the mentioned user")
	}

	bobRouter := routerAs(h, bob)
	w := get(bobRouter, "/api/notifications/unread-count")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"unread":1}`, w.Body.String())

	w = get(bobRouter, "/api/notifications")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Notifications []model.MentionNotification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	assert.Contains(t, resp.Notifications[0].TextSnippet, "@bob")

	// Visiting the inbox cleared the badge.
	w = get(bobRouter, "/api/notifications/unread-count")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"unread":0}`, w.Body.String())
}

func TestChangePassword(t *testing.T) {
	h, s := newTestHandler(t)
	user := seedAPIUser(t, s, "alice", "geheim123", model.RoleWorker)
	r := routerAs(h, user)

	w := postJSON(r, "/api/auth/password", `{"old_password":"falsch","new_password":"neuundlang"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/api/auth/password", `{"old_password":"geheim123","new_password":"kurz"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/api/auth/password", `{"old_password":"geheim123","new_password":"neuundlang"}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	got, err := s.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(got.PasswordHash, "neuundlang"))
}

func TestGetVAPIDPublicKey(t *testing.T) {
	h, _ := newTestHandler(t)
	r := routerAs(h, nil)

	w := get(r, "/api/vapid_public_key")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"test-public-key"}`, w.Body.String())
}
