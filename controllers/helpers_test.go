package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"fenifisc-registro/middleware"
	"fenifisc-registro/models"
	"fenifisc-registro/notify"
	"fenifisc-registro/storage"
)

// fakeStore records uploads and deletes instead of talking to S3.
type fakeStore struct {
	mu         sync.Mutex
	uploaded   map[string]string // key -> URL
	deleted    []string
	failUpload bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploaded: map[string]string{}}
}

func (f *fakeStore) Upload(file io.Reader, key, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return "", io.ErrUnexpectedEOF
	}
	io.Copy(io.Discard, file)
	url := "https://fake-bucket.local/" + key
	f.uploaded[key] = url
	return url, nil
}

func (f *fakeStore) Delete(fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileURL)
	return nil
}

// fakeNotifier counts notification attempts.
type fakeNotifier struct {
	mu           sync.Mutex
	adminNotices int
	statusEmails []string // "email|name|status"
	statusSMS    []string
	failEmail    bool
}

func (f *fakeNotifier) NotifyAdminNewAthlete(athlete models.Athlete, categories []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminNotices++
	return nil
}

func (f *fakeNotifier) NotifyAthleteStatus(email, name, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusEmails = append(f.statusEmails, email+"|"+name+"|"+status)
	if f.failEmail {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (f *fakeNotifier) NotifyAthleteStatusSMS(phone, name, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusSMS = append(f.statusSMS, phone+"|"+name+"|"+status)
	return nil
}

// newTestRouter wires the same route table as main.go.
func newTestRouter(db *sql.DB, store storage.DocumentStore, notifier notify.Notifier) *mux.Router {
	adminController := AdminController{}
	athleteController := AthleteController{Store: store, Notifier: notifier}
	competitionController := CompetitionController{}
	categoryController := CategoryController{}
	notifyController := NotifyController{Notifier: notifier}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/admin-login", adminController.Login(db)).Methods("POST")

	api.HandleFunc("/athletes", athleteController.RegisterAthlete(db)).Methods("POST")
	api.HandleFunc("/athletes", middleware.RequireAdmin(athleteController.GetAthletes(db))).Methods("GET")
	api.HandleFunc("/athletes/export", middleware.RequireAdmin(athleteController.ExportAthletes(db))).Methods("GET")
	api.HandleFunc("/athletes/{id}", athleteController.GetAthlete(db)).Methods("GET")
	api.HandleFunc("/athletes/{id}", middleware.RequireAdmin(athleteController.UpdateAthlete(db))).Methods("PUT")
	api.HandleFunc("/athletes/{id}", middleware.RequireAdmin(athleteController.DeleteAthlete(db))).Methods("DELETE")

	api.HandleFunc("/competitions", competitionController.GetCompetitions(db)).Methods("GET")
	api.HandleFunc("/competitions", middleware.RequireAdmin(competitionController.CreateCompetition(db))).Methods("POST")
	api.HandleFunc("/competitions/{id}", competitionController.GetCompetition(db)).Methods("GET")
	api.HandleFunc("/competitions/{id}", middleware.RequireAdmin(competitionController.UpdateCompetition(db))).Methods("PUT")
	api.HandleFunc("/competitions/{id}", middleware.RequireAdmin(competitionController.DeleteCompetition(db))).Methods("DELETE")

	api.HandleFunc("/categories", categoryController.GetCategories(db)).Methods("GET")
	api.HandleFunc("/categories", middleware.RequireAdmin(categoryController.CreateCategory(db))).Methods("POST")

	api.HandleFunc("/send-approval-email", middleware.RequireAdmin(notifyController.SendApprovalEmail())).Methods("POST")
	api.HandleFunc("/notify-admin-new-athlete", notifyController.NotifyAdminNewAthlete()).Methods("POST")

	return router
}

// registrationRequest builds the multipart submission the registration
// form sends.
func registrationRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write form field %s: %v", k, err)
		}
	}
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".jpg")
		if err != nil {
			t.Fatalf("Failed to create form file %s: %v", field, err)
		}
		part.Write(content)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/athletes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func doRaw(t *testing.T, router *mux.Router, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return out
}
