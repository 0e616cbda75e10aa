package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mbreban/nanarbase/internal/domain"
	"github.com/mbreban/nanarbase/internal/services"
)

func TestListReviews_Pagination(t *testing.T) {
	reviews := &fakeReviewService{
		items: []domain.Review{{Title: "A"}, {Title: "B"}},
		total: 5,
	}
	r := newTestRouter(&fakeIngestService{}, reviews, &fakeMovieService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews?page=1&page_size=2", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListReviewsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pagination.Total != 5 || resp.Pagination.TotalPages != 3 || !resp.Pagination.HasNext {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
	if len(resp.Reviews) != 2 {
		t.Errorf("got %d reviews", len(resp.Reviews))
	}
}

func TestGetReview_RequiresLink(t *testing.T) {
	r := newTestRouter(&fakeIngestService{}, &fakeReviewService{}, &fakeMovieService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews/one", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetReview_NotFound(t *testing.T) {
	reviews := &fakeReviewService{err: services.ErrReviewNotFound}
	r := newTestRouter(&fakeIngestService{}, reviews, &fakeMovieService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reviews/one?link=https://example.org/x.html", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != ErrCodeNotFound {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestDeleteReview_NoContent(t *testing.T) {
	r := newTestRouter(&fakeIngestService{}, &fakeReviewService{}, &fakeMovieService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/reviews/one?link=https://example.org/x.html", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSearchMovies_RequiresQuery(t *testing.T) {
	r := newTestRouter(&fakeIngestService{}, &fakeReviewService{}, &fakeMovieService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/search", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSearchMovies_RelaysBody(t *testing.T) {
	movies := &fakeMovieService{body: json.RawMessage(`{"results":[{"id":42}]}`)}
	r := newTestRouter(&fakeIngestService{}, &fakeReviewService{}, movies)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/search?query=jaguar&year=1988", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != `{"results":[{"id":42}]}` {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMovieDetails_BadID(t *testing.T) {
	r := newTestRouter(&fakeIngestService{}, &fakeReviewService{}, &fakeMovieService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/not-a-number", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestMovieDetails_NotFound(t *testing.T) {
	movies := &fakeMovieService{err: services.ErrMovieNotFound}
	r := newTestRouter(&fakeIngestService{}, &fakeReviewService{}, movies)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/99999", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
