package api_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/swasthya/internal/api"
	"github.com/UnknownOlympus/swasthya/internal/auth"
	"github.com/UnknownOlympus/swasthya/internal/cache"
	"github.com/UnknownOlympus/swasthya/internal/geocoding"
	"github.com/UnknownOlympus/swasthya/internal/links"
	"github.com/UnknownOlympus/swasthya/internal/metrics"
	"github.com/UnknownOlympus/swasthya/internal/models"
	"github.com/UnknownOlympus/swasthya/internal/repository"
	"github.com/UnknownOlympus/swasthya/internal/service"
	"github.com/UnknownOlympus/swasthya/test/mocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "api-test-secret"

var (
	aiims = models.Hospital{
		ID: "aiims", Name: "AIIMS", Address: "Ansari Nagar", City: "New Delhi",
		Phone: "011-26588500", Beds: 2478, AvailableBeds: 40, Emergency: true, Ambulance: true,
		Specialties: []string{"Cardiology"},
		Location:    &models.Coordinates{Latitude: 28.5672, Longitude: 77.2100},
	}
	safdarjung = models.Hospital{
		ID: "sjh", Name: "Safdarjung Hospital", Address: "Ring Road", City: "New Delhi",
		Beds: 1531, AvailableBeds: 0, Specialties: []string{"Burns"},
		Location: &models.Coordinates{Latitude: 28.5685, Longitude: 77.2066},
	}
	vellore = models.Hospital{
		ID: "cmc", Name: "CMC Vellore", City: "Vellore", Ambulance: true,
		Location: &models.Coordinates{Latitude: 12.9246, Longitude: 79.1353},
	}
)

type fixture struct {
	e        *echo.Echo
	repo     *mocks.Interface
	geocoder *mocks.Provider
	verifier *auth.TokenVerifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := slog.Default()
	repo := mocks.NewInterface(t)
	geocoder := mocks.NewProvider(t)

	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	m := metrics.NewMetrics(prometheus.NewRegistry())
	directory := service.NewDirectoryService(log, repo, cache.NewOverrideStore(rdb, 0, log), m,
		service.Radii{NearbyKm: 25, AmbulanceKm: 50})
	bookings := service.NewBookingService(log, repo, directory, m)
	records := service.NewRecordService(log, repo)
	verifier := auth.NewTokenVerifier(secret)

	handler := api.NewHandler(log, directory, bookings, records, geocoder)
	e := api.NewRouter(log, auth.NewResolver(verifier, repo, log), handler)

	return &fixture{e: e, repo: repo, geocoder: geocoder, verifier: verifier}
}

// as returns a bearer header for uid, who administers the given hospitals.
func (f *fixture) as(t *testing.T, uid string, hospitalIDs ...string) string {
	t.Helper()

	token, err := f.verifier.IssueToken(uid, time.Hour)
	require.NoError(t, err)
	if hospitalIDs == nil {
		hospitalIDs = []string{}
	}
	f.repo.On("AdminHospitalIDs", mock.Anything, uid).Return(hospitalIDs, nil).Maybe()

	return "Bearer " + token
}

func (f *fixture) do(method, target, body, authorization string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	return rec
}

func (f *fixture) listing() {
	f.repo.On("ListHospitals", mock.Anything).Return([]models.Hospital{aiims, vellore, safdarjung}, nil).Once()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return out
}

func TestListHospitals(t *testing.T) {
	t.Parallel()

	t.Run("nearest first within the default radius", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.listing()

		rec := f.do(http.MethodGet, "/api/v1/hospitals?lat=28.5672&lng=77.2100", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[api.ListResponse](t, rec)
		require.Equal(t, 2, body.Count)
		assert.Equal(t, "aiims", body.Hospitals[0].ID)
		assert.Equal(t, "sjh", body.Hospitals[1].ID)
		require.NotNil(t, body.Hospitals[0].DistanceKm)
		assert.Zero(t, *body.Hospitals[0].DistanceKm)
		require.NotNil(t, body.Reference)
	})

	t.Run("without a position everything is listed by name", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.listing()

		rec := f.do(http.MethodGet, "/api/v1/hospitals", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[api.ListResponse](t, rec)
		require.Equal(t, 3, body.Count)
		assert.Equal(t, []string{"aiims", "cmc", "sjh"},
			[]string{body.Hospitals[0].ID, body.Hospitals[1].ID, body.Hospitals[2].ID})
		assert.Nil(t, body.Reference)
		assert.NotContains(t, rec.Body.String(), "distanceKm")
	})

	t.Run("text filter", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.listing()

		rec := f.do(http.MethodGet, "/api/v1/hospitals?q=burns", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[api.ListResponse](t, rec)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, "sjh", body.Hospitals[0].ID)
	})

	t.Run("bad query parameters", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for _, target := range []string{
			"/api/v1/hospitals?lat=abc&lng=77.2",
			"/api/v1/hospitals?lat=28.6",
			"/api/v1/hospitals?lat=95&lng=77.2",
			"/api/v1/hospitals?lat=28.6&lng=77.2&radius=-3",
			"/api/v1/hospitals?radius=NaN",
			"/api/v1/hospitals/ambulance?lng=77.2",
		} {
			rec := f.do(http.MethodGet, target, "", "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
	})
}

func TestAmbulanceAndSearch(t *testing.T) {
	t.Parallel()

	t.Run("ambulance", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.listing()

		rec := f.do(http.MethodGet, "/api/v1/hospitals/ambulance?lat=28.6315&lng=77.2167", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[api.ListResponse](t, rec)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, "aiims", body.Hospitals[0].ID)
	})

	t.Run("search without text", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/hospitals/search", "", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("search ignores the radius", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.listing()

		rec := f.do(http.MethodGet, "/api/v1/hospitals/search?q=vellore&lat=28.6315&lng=77.2167", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[api.ListResponse](t, rec)
		require.Equal(t, 1, body.Count)
		assert.Greater(t, *body.Hospitals[0].DistanceKm, 1000.0)
	})
}

func TestGetHospital(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.On("GetHospital", mock.Anything, "nope").Return(nil, repository.ErrNotFound).Once()

		rec := f.do(http.MethodGet, "/api/v1/hospitals/nope", "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("links", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		h := aiims
		f.repo.On("GetHospital", mock.Anything, "aiims").Return(&h, nil).Once()

		rec := f.do(http.MethodGet, "/api/v1/hospitals/aiims/links?lat=28.6315&lng=77.2167", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[links.HospitalLinks](t, rec)
		assert.Equal(t, "tel:+911126588500", body.Call)
		assert.Contains(t, body.Ride, "m.uber.com")
		assert.Contains(t, body.Directions, "openstreetmap.org")
	})
}

func TestOverrides(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	admin := f.as(t, "uid-admin", "aiims")
	canonical := aiims
	f.repo.On("GetHospital", mock.Anything, "aiims").Return(&canonical, nil)

	rec := f.do(http.MethodPut, "/api/v1/hospitals/aiims/override", `{"availableBeds": 3, "phone": "1800-11-0000"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/v1/hospitals/aiims", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Hospital](t, rec)
	assert.Equal(t, 3, got.AvailableBeds)
	assert.Equal(t, "1800-11-0000", got.Phone)
	assert.Equal(t, "AIIMS", got.Name)

	rec = f.do(http.MethodDelete, "/api/v1/hospitals/aiims/override", "", admin)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/hospitals/aiims", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40, decode[models.Hospital](t, rec).AvailableBeds)
}

func TestRoles(t *testing.T) {
	t.Parallel()

	t.Run("guest cannot create", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/hospitals", `{"name":"Clinic"}`, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/hospitals", "", "Bearer forged")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("user cannot edit", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPut, "/api/v1/hospitals/aiims", `{"name":"AIIMS"}`, f.as(t, "uid-1"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin of another hospital cannot edit", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPut, "/api/v1/hospitals/aiims", `{"name":"AIIMS"}`, f.as(t, "uid-2", "cmc"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("claim conflict", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.On("ClaimHospital", mock.Anything, "aiims", "uid-1").Return(repository.ErrAlreadyClaimed).Once()

		rec := f.do(http.MethodPost, "/api/v1/hospitals/aiims/claim", "", f.as(t, "uid-1"))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/session", "", f.as(t, "uid-3", "aiims"))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "admin", body["role"])
		assert.Equal(t, "uid-3", body["uid"])
	})
}

func TestBookings(t *testing.T) {
	t.Parallel()

	t.Run("video booking carries its room", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		h := aiims
		f.repo.On("GetHospital", mock.Anything, "aiims").Return(&h, nil).Once()
		f.repo.On("CreateBooking", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = uuid.MustParse("5f1d3c64-4a43-4f5e-9d3c-2a8f0b7e6c11")
		}).Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/bookings",
			`{"hospitalId":"aiims","patientName":"Asha","kind":"video","scheduledAt":"2030-01-01T10:00:00Z"}`,
			f.as(t, "uid-1"))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decode[api.BookingView](t, rec)
		assert.Equal(t, models.StatusPending, body.Status)
		assert.Equal(t, "https://meet.jit.si/swasthya-5f1d3c644a434f5e9d3c2a8f0b7e6c11", body.VideoCall)
	})

	t.Run("bed booking without beds", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		h := safdarjung
		f.repo.On("GetHospital", mock.Anything, "sjh").Return(&h, nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/bookings",
			`{"hospitalId":"sjh","patientName":"Asha","kind":"bed","scheduledAt":"2030-01-01T10:00:00Z"}`,
			f.as(t, "uid-1"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodPatch, "/api/v1/bookings/not-a-uuid", `{"status":"cancelled"}`, f.as(t, "uid-1"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner cancels", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := uuid.New()
		f.repo.On("GetBooking", mock.Anything, id).Return(&models.Booking{
			ID: id, HospitalID: "aiims", UserUID: "uid-1", Kind: models.BookingAppointment, Status: models.StatusPending,
		}, nil).Once()
		f.repo.On("UpdateBookingStatus", mock.Anything, id, models.StatusCancelled).Return(nil).Once()

		rec := f.do(http.MethodPatch, "/api/v1/bookings/"+id.String(), `{"status":"cancelled"}`, f.as(t, "uid-1"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.StatusCancelled, decode[api.BookingView](t, rec).Status)
	})
}

func TestRecords(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := f.as(t, "uid-1")
	id := uuid.New()
	f.repo.On("ListRecordsByUser", mock.Anything, "uid-1").Return([]models.MedicalRecord{{ID: id, UserUID: "uid-1"}}, nil).Once()
	f.repo.On("DeleteRecord", mock.Anything, id, "uid-1").Return(nil).Once()

	rec := f.do(http.MethodPost, "/api/v1/records", `{"title":"X-ray","fileUrl":"not a url"}`, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/records", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MedicalRecord](t, rec), 1)

	rec = f.do(http.MethodDelete, "/api/v1/records/"+id.String(), "", user)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGeocode(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.geocoder.On("Geocode", mock.Anything, "Sector 62, Noida").Return(&models.Place{
			Coordinates: models.Coordinates{Latitude: 28.6187, Longitude: 77.3726},
			DisplayName: "Sector 62, Noida, Uttar Pradesh",
		}, nil).Once()

		rec := f.do(http.MethodGet, "/api/v1/geocode?q=Sector+62,+Noida", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[models.Place](t, rec)
		assert.InDelta(t, 28.6187, body.Latitude, 1e-9)
		assert.Equal(t, "Sector 62, Noida, Uttar Pradesh", body.DisplayName)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.geocoder.On("Geocode", mock.Anything, "zzz").Return(nil, geocoding.ErrNominatimEmptyResponse).Once()

		rec := f.do(http.MethodGet, "/api/v1/geocode?q=zzz", "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("provider down", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.geocoder.On("Geocode", mock.Anything, "Noida").Return(nil, assert.AnError).Once()

		rec := f.do(http.MethodGet, "/api/v1/geocode?q=Noida", "", "")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("missing q", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/geocode", "", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
