package requests

import (
	"emsbot/internal/cache"
	"emsbot/internal/common"
	"emsbot/internal/config"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRouter(t *testing.T) http.Handler {
	cache.InitMemory()
	store := config.NewStore(filepath.Join(t.TempDir(), "emsbot.json"))
	document := createDocument(t)
	require.NoError(t, store.Save(document))
	httpWorkflow = NewWorkflow(NewWorkflowOpts{
		Store:    store,
		Notifier: &fakeNotifier{},
	})

	router := mux.NewRouter()
	for urlPath, routeHandlers := range routesMapping {
		for method, getRouteHandler := range routeHandlers {
			router.HandleFunc(urlPath, getRouteHandler()).Methods(method)
		}
	}
	router.NotFoundHandler = common.GetNotFoundHandler()
	logger := common.GetRequestLoggerMiddleware(common.GetNoopServiceLog())
	return logger(router)
}

func TestHttpCreateRequest(t *testing.T) {
	router := createTestRouter(t)
	body := `{
		"kind": "vacation-icc",
		"submitter": {"id": 1, "name": "alice", "roles": ["Medic"]},
		"start": "01.03.2024",
		"end": "03.03.2024",
		"reason": "family visit"
	}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, recorder.Code)

	var response common.HttpResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)

	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var record Record
	require.NoError(t, json.Unmarshal(data, &record))
	assert.NotEmpty(t, record.Id)
	assert.Equal(t, StatusPending, record.Status)
	assert.Equal(t, 3, record.DurationDays)
}

func TestHttpCreateRequestValidation(t *testing.T) {
	router := createTestRouter(t)
	body := `{
		"kind": "vacation-icc",
		"submitter": {"id": 1, "name": "alice", "roles": ["Medic"]},
		"start": "garbage",
		"end": "03.03.2024"
	}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHttpCreateRequestBadBody(t *testing.T) {
	router := createTestRouter(t)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHttpGetRequest(t *testing.T) {
	router := createTestRouter(t)
	record, err := httpWorkflow.Submit(Submission{
		Kind:      KindBreak,
		Submitter: Identity{Id: 2, Name: "bob", Roles: []string{"Driver"}},
		Start:     "12:00",
		End:       "12:30",
	})
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/requests/"+record.Id, nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var response common.HttpResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)
}

func TestHttpGetUnknownRequest(t *testing.T) {
	router := createTestRouter(t)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/requests/nope", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHttpListRequests(t *testing.T) {
	router := createTestRouter(t)
	for _, kind := range []Kind{KindIccVacation, KindOcVacation} {
		_, err := httpWorkflow.Submit(Submission{
			Kind:      kind,
			Submitter: Identity{Id: 1, Name: "alice", Roles: []string{"Medic"}},
			Start:     "01.03.2024",
			End:       "01.03.2024",
		})
		require.NoError(t, err)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var response common.HttpResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	records, ok := response.Data.([]any)
	require.True(t, ok)
	assert.Len(t, records, 2)
}
