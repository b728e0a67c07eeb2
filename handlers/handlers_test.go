package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	memoryRepo "pgmanager/database/repository/memory"
	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/services/activity"
	"pgmanager/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.SetLogger(zap.NewNop())
	m.Run()
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(utils.ErrorHandler())
	return r
}

func newActivities() activity.ActivityService {
	return activity.NewDefaultActivityService(memoryRepo.NewRepo[models.Activity, *models.Activity](resourceRepo.ActivitySpec))
}

func perform(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
