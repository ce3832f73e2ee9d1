package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/neighborhoods/internal/domain/form"
	"github.com/okian/neighborhoods/internal/domain/results"
	"github.com/okian/neighborhoods/pkg/logger"
)

func init() {
	if err := logger.InitWithWriter(&bytes.Buffer{}); err != nil {
		panic(err)
	}
}

func fakeService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/similar", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req["player_name"] == "Lebron Jame" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Player Lebron Jame not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[` +
			`{"player":"LeBron James","season":2004,"is_target":true,"metrics":[27.2,7.2]},` +
			`{"player":"Kobe Bryant","season":"2005-06","similarity":0.912,"distance":0.096,"metrics":[35.4,4.5]},` +
			`{"player":"Tracy McGrady","season":"2002-03","similarity":0.85,"metrics":[32.1]}` +
			`],"metadata":{"features":["PTS","AST"],"feature_group":"scoring","search_method":"Exact KD-Tree","total_results":3}}`))
	})
	mux.HandleFunc("/api/players", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"players":["LeBron James","Kobe Bryant"],"total":2}`))
	})
	mux.HandleFunc("/api/feature-groups", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"feature_groups":["scoring","defense","impact","traditional"]}`))
	})
	mux.HandleFunc("/api/player/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"player":"LeBron James","seasons":["2003-04",2004],"total_seasons":2}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func baseConfig(url string) *Config {
	return &Config{
		BaseURL:    url,
		PlayerName: "LeBron James",
		Year:       "2004",
		Profile:    "scoring",
		GroupSize:  5,
		Exact:      true,
		Timeout:    2 * time.Second,

		SuggestionCount: 3,
	}
}

func TestRunSearch(t *testing.T) {
	Convey("Given a similarity service", t, func() {
		srv := fakeService(t)
		var out bytes.Buffer
		ctx := context.Background()

		Convey("When searching", func() {
			err := Run(ctx, baseConfig(srv.URL), &out)

			Convey("Then the table is printed", func() {
				So(err, ShouldBeNil)
				s := out.String()
				So(s, ShouldContainSubstring, "Scoring Results for LeBron James")
				So(s, ShouldContainSubstring, "(Exact KD-Tree)")
				So(s, ShouldContainSubstring, "2004-05")
				So(s, ShouldContainSubstring, "Target")
				So(s, ShouldContainSubstring, "0.912")
				So(s, ShouldContainSubstring, "warning: 1 row(s)")
			})
		})

		Convey("When the form is incomplete", func() {
			cfg := baseConfig(srv.URL)
			cfg.PlayerName = " "
			cfg.GroupSize = 0
			err := Run(ctx, cfg, &out)

			Convey("Then field messages are printed", func() {
				So(errors.Is(err, form.ErrInvalid), ShouldBeTrue)
				So(out.String(), ShouldContainSubstring, "group_size: Value must be greater than or equal to 1.")
				So(out.String(), ShouldContainSubstring, "player_name: Please enter a name.")
			})
		})

		Convey("When the profile is unknown", func() {
			cfg := baseConfig(srv.URL)
			cfg.Profile = "offense"
			err := Run(ctx, cfg, &out)

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "choose one of: scoring, style")
		})

		Convey("When the player is unknown", func() {
			cfg := baseConfig(srv.URL)
			cfg.PlayerName = "Lebron Jame"
			err := Run(ctx, cfg, &out)

			Convey("Then the server message and a suggestion are printed", func() {
				So(err, ShouldNotBeNil)
				So(out.String(), ShouldContainSubstring, "Error: Player Lebron Jame not found")
				So(out.String(), ShouldContainSubstring, "Did you mean: LeBron James?")
			})
		})

		Convey("When the player is unknown and suggestions are off", func() {
			cfg := baseConfig(srv.URL)
			cfg.PlayerName = "Lebron Jame"
			cfg.SuggestionCount = 0
			err := Run(ctx, cfg, &out)

			Convey("Then only the server message is printed", func() {
				So(err, ShouldNotBeNil)
				So(out.String(), ShouldContainSubstring, "Error: Player Lebron Jame not found")
				So(out.String(), ShouldNotContainSubstring, "Did you mean")
			})
		})

		Convey("When listing seasons", func() {
			cfg := baseConfig(srv.URL)
			cfg.Seasons = true
			err := Run(ctx, cfg, &out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "LeBron James: 2 season(s)")
			So(out.String(), ShouldContainSubstring, "  2004-05")
		})

		Convey("When checking profiles", func() {
			cfg := baseConfig(srv.URL)
			cfg.CheckProfiles = true
			err := Run(ctx, cfg, &out)

			Convey("Then drift is reported", func() {
				So(errors.Is(err, ErrProfileDrift), ShouldBeTrue)
				So(out.String(), ShouldContainSubstring, "unknown to the service: style")
			})
		})
	})
}

func TestRender(t *testing.T) {
	Convey("Given an empty table", t, func() {
		var out bytes.Buffer
		So(Render(&out, results.Table{}), ShouldBeNil)
		So(out.String(), ShouldContainSubstring, "no results")
	})

	Convey("Given a table with a target row", t, func() {
		var out bytes.Buffer
		table := results.Table{
			Heading: "Impact Results for Tim Duncan",
			Columns: []results.Column{{Title: "Player"}, {Title: "Season"}, {Title: "Similarity"}},
			Rows: []results.Row{
				{Cells: []string{"Tim Duncan", "2002-03", "Target"}, Target: true},
				{Cells: []string{"Kevin Garnett", "2003-04", "0.9"}},
			},
		}
		So(Render(&out, table), ShouldBeNil)

		Convey("Then the target is marked", func() {
			So(out.String(), ShouldContainSubstring, "*  Tim Duncan")
			So(out.String(), ShouldContainSubstring, "Kevin Garnett")
		})
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given the help text", t, func() {
		var out bytes.Buffer
		ShowHelp(&out)
		So(out.String(), ShouldContainSubstring, "-profile")
	})
}
