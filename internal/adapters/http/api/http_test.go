package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/neighborhoods/internal/adapters/similarity"
	service "github.com/okian/neighborhoods/internal/app"
	"github.com/okian/neighborhoods/internal/domain/types"
)

type stubUpstream struct {
	searches int
}

func (s *stubUpstream) Search(_ context.Context, req types.SearchRequest) (types.SearchResponse, error) {
	s.searches++
	if req.PlayerName == "Nobody" {
		return types.SearchResponse{}, &similarity.APIError{Status: http.StatusNotFound, Message: "Player Nobody not found"}
	}
	sim := 0.875
	return types.SearchResponse{
		Success: true,
		Data: []types.ResultRow{
			{Player: req.PlayerName, Season: "2004", IsTarget: true, Metrics: []float64{27.2}},
			{Player: "Kobe Bryant", Season: "2005-06", Similarity: &sim, Metrics: []float64{35.4}},
		},
		Metadata: types.Metadata{Features: []string{"pts"}, SearchMethod: "Approximate ANN"},
	}, nil
}

func (s *stubUpstream) FeatureGroups(context.Context) (types.FeatureGroupsResponse, error) {
	return types.FeatureGroupsResponse{}, nil
}

func (s *stubUpstream) Players(context.Context) ([]string, error) { return nil, nil }

func (s *stubUpstream) PlayerSeasons(context.Context, string) (types.PlayerSeasonsResponse, error) {
	return types.PlayerSeasonsResponse{}, nil
}

// browser replays the session cookie across requests.
type browser struct {
	handler http.Handler
	cookie  *http.Cookie
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			b.cookie = c
		}
	}
	return w
}

func newTestServer() (*browser, *stubUpstream, *service.Service) {
	up := &stubUpstream{}
	svc := service.New(service.WithUpstream(up))
	srv, err := NewServer(svc, svc)
	So(err, ShouldBeNil)
	r := mux.NewRouter()
	srv.Register(context.Background(), r)
	return &browser{handler: r}, up, svc
}

func TestIndex(t *testing.T) {
	Convey("Given a fresh browser", t, func() {
		b, _, svc := newTestServer()

		Convey("When loading the page", func() {
			w := b.do(http.MethodGet, "/", nil)

			Convey("Then the form renders and a session cookie is issued", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, "Enter Player Name")
				So(w.Body.String(), ShouldContainSubstring, `formaction="/profile/style"`)
				So(w.Body.String(), ShouldContainSubstring, `value="5"`)
				So(b.cookie, ShouldNotBeNil)
				So(b.cookie.HttpOnly, ShouldBeTrue)
				So(svc.SessionCount(context.Background()), ShouldEqual, 1)
			})

			Convey("And pressing Enter submits through the search button", func() {
				page := w.Body.String()
				form := page[strings.Index(page, "<form"):]
				first := form[strings.Index(form, `type="submit"`):]
				first = first[:strings.Index(first, ">")]
				So(first, ShouldContainSubstring, `formaction="/search"`)
				So(first, ShouldNotContainSubstring, "/profile/")
			})

			Convey("And reloading keeps the same session", func() {
				first := b.cookie.Value
				b.do(http.MethodGet, "/", nil)
				So(b.cookie.Value, ShouldEqual, first)
				So(svc.SessionCount(context.Background()), ShouldEqual, 1)
			})
		})

		Convey("When the cookie is not a session id", func() {
			b.cookie = &http.Cookie{Name: SessionCookie, Value: "../../etc"}
			b.do(http.MethodGet, "/", nil)

			Convey("Then a new id is issued", func() {
				So(b.cookie.Value, ShouldNotEqual, "../../etc")
			})
		})
	})
}

func TestSearchFlow(t *testing.T) {
	Convey("Given a browser with a session", t, func() {
		b, up, _ := newTestServer()
		b.do(http.MethodGet, "/", nil)

		Convey("When submitting an empty form", func() {
			w := b.do(http.MethodPost, "/search", url.Values{"player_name": {""}, "group_size": {"5"}})
			page := b.do(http.MethodGet, "/", nil).Body.String()

			Convey("Then validation messages show and nothing is sent", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(page, ShouldContainSubstring, "Please enter a name.")
				So(page, ShouldContainSubstring, "Please select a profile.")
				So(up.searches, ShouldEqual, 0)
			})
		})

		Convey("When picking a profile after a blocked search", func() {
			fields := url.Values{"player_name": {"LeBron James"}, "group_size": {"5"}}
			b.do(http.MethodPost, "/search", fields)
			blocked := b.do(http.MethodGet, "/", nil).Body.String()
			So(blocked, ShouldContainSubstring, "Please select a profile.")

			b.do(http.MethodPost, "/profile/scoring", fields)
			page := b.do(http.MethodGet, "/", nil).Body.String()

			Convey("Then the profile message is gone", func() {
				So(page, ShouldContainSubstring, `class="profile selected"`)
				So(page, ShouldNotContainSubstring, "Please select a profile.")
				So(up.searches, ShouldEqual, 0)
			})
		})

		Convey("When selecting a profile and searching", func() {
			fields := url.Values{"player_name": {"LeBron James"}, "year": {"2004"}, "group_size": {"5"}}
			w := b.do(http.MethodPost, "/profile/scoring", fields)
			So(w.Code, ShouldEqual, http.StatusSeeOther)
			b.do(http.MethodPost, "/search", fields)
			page := b.do(http.MethodGet, "/", nil).Body.String()

			Convey("Then the results table renders", func() {
				So(up.searches, ShouldEqual, 1)
				So(page, ShouldContainSubstring, "Scoring Results for LeBron James")
				So(page, ShouldContainSubstring, "2004-05")
				So(page, ShouldContainSubstring, "<td>Target</td>")
				So(page, ShouldContainSubstring, "<td>0.875</td>")
				So(page, ShouldContainSubstring, "<th>pts</th>")
				So(page, ShouldContainSubstring, `class="profile selected"`)
			})

			Convey("And toggling the profile again clears it", func() {
				b.do(http.MethodPost, "/profile/scoring", fields)
				page := b.do(http.MethodGet, "/", nil).Body.String()
				So(page, ShouldNotContainSubstring, `class="profile selected"`)
				So(page, ShouldContainSubstring, "Scoring Results for LeBron James")
			})
		})

		Convey("When searching for an unknown player", func() {
			fields := url.Values{"player_name": {"Nobody"}, "group_size": {"3"}}
			b.do(http.MethodPost, "/profile/defense", fields)
			b.do(http.MethodPost, "/search", fields)
			page := b.do(http.MethodGet, "/", nil).Body.String()

			Convey("Then the server message is shown", func() {
				So(page, ShouldContainSubstring, "Player Nobody not found")
			})
		})

		Convey("When toggling an unknown profile", func() {
			w := b.do(http.MethodPost, "/profile/offense", url.Values{})

			Convey("Then it is a 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, "unknown_profile")
			})
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given a server", t, func() {
		b, _, _ := newTestServer()
		b.do(http.MethodGet, "/", nil)

		Convey("Then /healthz serves metrics", func() {
			w := b.do(http.MethodGet, "/healthz", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "nban_ui_http_requests_total")
		})

		Convey("Then /stats serves service stats", func() {
			w := b.do(http.MethodGet, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			var stats map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["sessions"], ShouldEqual, float64(1))
		})

		Convey("Then GET /search is not routed", func() {
			w := b.do(http.MethodGet, "/search", nil)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestGetErrorType(t *testing.T) {
	Convey("Given status codes", t, func() {
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(405), ShouldEqual, "method_not_allowed")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorType(200), ShouldEqual, "unknown")
	})
}
