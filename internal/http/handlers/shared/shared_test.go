package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 20},
		{3, 50, 3, 50},
		{2, 500, 2, 100},
	}
	for _, tc := range cases {
		page, size := NormalizePagination(tc.page, tc.size)
		if page != tc.wantPage || size != tc.wantSize {
			t.Fatalf("NormalizePagination(%d,%d) got (%d,%d)", tc.page, tc.size, page, size)
		}
	}
}

func TestParseStaffID(t *testing.T) {
	if id, ok := ParseStaffID(" 42 "); !ok || id != 42 {
		t.Fatalf("expected 42, got %d %v", id, ok)
	}
	for _, raw := range []string{"", "0", "-1", "abc"} {
		if _, ok := ParseStaffID(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestRespondErrorUsesHTTPStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondError(c, 404, "error.receipt_not_found", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if Message("error.unknown_key") != "error.unknown_key" {
		t.Fatalf("expected missing key to echo itself")
	}
}

func TestStaffActorFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(ContextKeyStaffID, uint(7))

	actor := StaffActor(c)
	if actor.UserID == nil || *actor.UserID != 7 {
		t.Fatalf("expected staff id 7, got %+v", actor.UserID)
	}
}
