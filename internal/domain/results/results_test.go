package results_test

import (
	"testing"

	"github.com/okian/neighborhoods/internal/domain/results"
	"github.com/okian/neighborhoods/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func sim(v float64) *float64 { return &v }

func okResponse(player string) types.SearchResponse {
	return types.SearchResponse{
		Success: true,
		Data: []types.ResultRow{
			{Player: player, Season: "2004", IsTarget: true, Similarity: sim(1), Metrics: []float64{27.2, 0.472}},
			{Player: "Kobe Bryant", Season: "2005-06", Similarity: sim(0.912), Metrics: []float64{35.4, 0.45}},
			{Player: "Vince Carter", Season: "1999", Metrics: []float64{25.7, 0.465}},
		},
		Metadata: types.Metadata{Features: []string{"PTS", "FG_PCT"}, SearchMethod: "Exact KD-Tree"},
	}
}

func TestFormatSeason(t *testing.T) {
	Convey("Given raw seasons", t, func() {
		Convey("Then bare years expand to ranges", func() {
			So(results.FormatSeason("2004"), ShouldEqual, "2004-05")
			So(results.FormatSeason("1999"), ShouldEqual, "1999-00")
			So(results.FormatSeason("2009"), ShouldEqual, "2009-10")
			So(results.FormatSeason("2099"), ShouldEqual, "2099-00")
		})

		Convey("And formatted strings pass through", func() {
			So(results.FormatSeason("2004-05"), ShouldEqual, "2004-05")
			So(results.FormatSeason(results.FormatSeason("2004")), ShouldEqual, "2004-05")
			So(results.FormatSeason("All seasons"), ShouldEqual, "All seasons")
			So(results.FormatSeason(""), ShouldEqual, "")
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given an empty state", t, func() {
		var s results.State

		Convey("When a submission begins", func() {
			s.Error = "old"
			s.Begin()

			Convey("Then loading is set and the error cleared", func() {
				So(s.Loading, ShouldBeTrue)
				So(s.Error, ShouldBeEmpty)
			})
		})

		Convey("When a successful response is applied", func() {
			s.Begin()
			ok := s.Apply(okResponse("LeBron James"), results.Query{PlayerName: "LeBron James", ProfileLabel: "Scoring"})

			Convey("Then rows, columns and query are committed", func() {
				So(ok, ShouldBeTrue)
				So(s.Loading, ShouldBeFalse)
				So(len(s.Rows), ShouldEqual, 3)
				So(s.Features, ShouldResemble, []string{"PTS", "FG_PCT"})
				So(s.Query.PlayerName, ShouldEqual, "LeBron James")
				So(s.SearchMethod, ShouldEqual, "Exact KD-Tree")
				So(s.HasResults(), ShouldBeTrue)
			})

			Convey("And a rejected response keeps them", func() {
				s.Begin()
				ok := s.Apply(types.SearchResponse{Success: false, Data: []types.ResultRow{{Player: "junk"}}}, results.Query{PlayerName: "Someone Else"})

				So(ok, ShouldBeFalse)
				So(s.Error, ShouldEqual, "Failed to get results")
				So(len(s.Rows), ShouldEqual, 3)
				So(s.Rows[0].Player, ShouldEqual, "LeBron James")
				So(s.Features, ShouldResemble, []string{"PTS", "FG_PCT"})
				So(s.Query.PlayerName, ShouldEqual, "LeBron James")
			})

			Convey("And a transport failure keeps them", func() {
				s.Begin()
				s.Fail("")

				So(s.Error, ShouldEqual, "An error occurred")
				So(s.Loading, ShouldBeFalse)
				So(len(s.Rows), ShouldEqual, 3)
			})

			Convey("And the next success replaces everything", func() {
				next := okResponse("Tim Duncan")
				next.Data = next.Data[:1]
				next.Metadata.Features = nil
				s.Apply(next, results.Query{PlayerName: "Tim Duncan"})

				So(len(s.Rows), ShouldEqual, 1)
				So(s.Features, ShouldNotBeNil)
				So(s.Features, ShouldBeEmpty)
				So(s.Query.PlayerName, ShouldEqual, "Tim Duncan")
			})
		})

		Convey("When suggestions are attached after a failure", func() {
			s.Fail("Player Lebron not found")
			s.Suggest([]string{"LeBron James"})

			Convey("Then the next submission clears them", func() {
				So(s.Suggestions, ShouldResemble, []string{"LeBron James"})
				s.Begin()
				So(s.Suggestions, ShouldBeNil)
			})
		})
	})
}

func TestTable(t *testing.T) {
	Convey("Given a committed response", t, func() {
		var s results.State
		s.Apply(okResponse("LeBron James"), results.Query{PlayerName: "LeBron James", ProfileLabel: "Scoring"})
		table := s.Table()

		Convey("Then the columns are fixed then server features in order", func() {
			titles := make([]string, 0, len(table.Columns))
			for _, c := range table.Columns {
				titles = append(titles, c.Title)
			}
			So(titles, ShouldResemble, []string{"Player", "Season", "Similarity", "PTS", "FG_PCT"})
			So(table.Columns[3].Feature, ShouldBeTrue)
			So(table.Columns[0].Feature, ShouldBeFalse)
		})

		Convey("And the heading uses the frozen query", func() {
			So(table.Heading, ShouldEqual, "Scoring Results for LeBron James")
			So(table.SearchMethod, ShouldEqual, "Exact KD-Tree")
		})

		Convey("And the target row says Target despite its similarity", func() {
			So(table.Rows[0].Target, ShouldBeTrue)
			So(table.Rows[0].Cells, ShouldResemble, []string{"LeBron James", "2004-05", "Target", "27.2", "0.472"})
		})

		Convey("And neighbours show similarity or N/A", func() {
			So(table.Rows[1].Cells[2], ShouldEqual, "0.912")
			So(table.Rows[1].Cells[1], ShouldEqual, "2005-06")
			So(table.Rows[2].Cells[2], ShouldEqual, "N/A")
			So(table.Rows[2].Cells[1], ShouldEqual, "1999-00")
		})

		Convey("And aligned rows are not flagged", func() {
			So(table.Violations(), ShouldBeEmpty)
		})
	})

	Convey("Given rows whose metrics do not match the features", t, func() {
		var s results.State
		s.Apply(types.SearchResponse{
			Success: true,
			Data: []types.ResultRow{
				{Player: "A", Season: "2001-02", Metrics: []float64{1, 2, 3}},
				{Player: "B", Season: "2001-02", Metrics: []float64{4}},
				{Player: "C", Season: "2001-02", Metrics: []float64{5, 6}},
			},
			Metadata: types.Metadata{Features: []string{"PTS", "AST"}},
		}, results.Query{PlayerName: "A"})
		table := s.Table()

		Convey("Then the shorter length is rendered and the row flagged", func() {
			So(table.Rows[0].Cells, ShouldResemble, []string{"A", "2001-02", "N/A", "1", "2"})
			So(table.Rows[1].Cells, ShouldResemble, []string{"B", "2001-02", "N/A", "4"})
			So(table.Violations(), ShouldResemble, []int{0, 1})
			So(table.Heading, ShouldEqual, "Players similar to A")
		})
	})

	Convey("Given a target row whose stats were not found", t, func() {
		var s results.State
		s.Apply(types.SearchResponse{
			Success: true,
			Data: []types.ResultRow{
				{Player: "A", Season: "2001-02", IsTarget: true, Metrics: []float64{}},
				{Player: "B", Season: "2001-02", Metrics: []float64{4, 5}},
				{Player: "C", Season: "2001-02", Metrics: nil},
			},
			Metadata: types.Metadata{Features: []string{"PTS", "AST"}},
		}, results.Query{PlayerName: "A"})
		table := s.Table()

		Convey("Then the empty target row renders without metrics and is not flagged", func() {
			So(table.Rows[0].Cells, ShouldResemble, []string{"A", "2001-02", "Target"})
			So(table.Rows[0].Misaligned, ShouldBeFalse)
		})

		Convey("And an empty neighbour row is still flagged", func() {
			So(table.Violations(), ShouldResemble, []int{2})
		})
	})

	Convey("Given an empty state", t, func() {
		var s results.State
		table := s.Table()

		So(table.Heading, ShouldBeEmpty)
		So(table.Rows, ShouldBeEmpty)
		So(len(table.Columns), ShouldEqual, 3)
	})
}

func TestClone(t *testing.T) {
	Convey("Given a committed state", t, func() {
		var s results.State
		s.Apply(okResponse("LeBron James"), results.Query{PlayerName: "LeBron James"})
		c := s.Clone()

		Convey("Then mutating the clone leaves the original", func() {
			c.Rows[0].Player = "changed"
			c.Features[0] = "changed"
			So(s.Rows[0].Player, ShouldEqual, "LeBron James")
			So(s.Features[0], ShouldEqual, "PTS")
		})
	})
}
