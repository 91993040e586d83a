package valuation

import (
	"dcf_valuation/pkg/models"
	"encoding/json"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// GridSize is the number of points on each sensitivity axis.
const GridSize = 7

// Cell is one scenario of the sensitivity grid. Valid is false where the
// perpetuity formula is undefined (WACC <= growth); such cells carry no value.
type Cell struct {
	PerShare float64
	Valid    bool
}

// MarshalJSON encodes invalid cells as null so they cannot be read as 0.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.PerShare)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{}
		return nil
	}
	if err := json.Unmarshal(data, &c.PerShare); err != nil {
		return err
	}
	c.Valid = true
	return nil
}

// SensitivityGrid holds per-share values over a WACC x perpetual growth grid.
// Cells[i][j] is the scenario (WACCs[i], Growths[j]).
type SensitivityGrid struct {
	WACCs   []float64 `json:"wacc_axis"`
	Growths []float64 `json:"growth_axis"`
	Cells   [][]Cell  `json:"cells"`

	// Grid point nearest to the base-case assumptions
	BaseRow int `json:"base_row"`
	BaseCol int `json:"base_col"`
}

// At returns the cell for row i, column j.
func (g SensitivityGrid) At(i, j int) Cell {
	return g.Cells[i][j]
}

// WACCAxis spans [0.8*wacc, 1.2*wacc].
func WACCAxis(wacc float64) []float64 {
	return floats.Span(make([]float64, GridSize), 0.8*wacc, 1.2*wacc)
}

// GrowthAxis spans [0.5*g, min(1.5*g, 0.9*wacc)]. The upper clamp keeps the
// grid edge away from the WACC = g singularity.
func GrowthAxis(growth, wacc float64) []float64 {
	return floats.Span(make([]float64, GridSize), 0.5*growth, math.Min(1.5*growth, 0.9*wacc))
}

// BuildSensitivity re-derives the per-share value for every grid scenario.
// Each valid cell goes through TerminalValue, EnterpriseValue, EquityValue and
// PerShareValue exactly like the base case. Rows are computed concurrently.
func BuildSensitivity(forecast []float64, s models.FundamentalsSnapshot, wacc, growth float64) SensitivityGrid {
	grid := SensitivityGrid{
		WACCs:   WACCAxis(wacc),
		Growths: GrowthAxis(growth, wacc),
		Cells:   make([][]Cell, GridSize),
	}

	debt, cash := s.TotalDebt(), s.CashOrZero()
	shares := models.Value(s.SharesOutstanding)

	var final float64
	if len(forecast) > 0 {
		final = forecast[len(forecast)-1]
	}

	var eg errgroup.Group
	for i := range grid.WACCs {
		i := i
		eg.Go(func() error {
			w := grid.WACCs[i]
			row := make([]Cell, GridSize)
			for j, g := range grid.Growths {
				if w <= g || len(forecast) == 0 {
					continue
				}
				tv, err := TerminalValue(final, g, w)
				if err != nil {
					continue
				}
				ev, _, _ := EnterpriseValue(forecast, tv, w)
				row[j] = Cell{PerShare: PerShareValue(EquityValue(ev, debt, cash), shares), Valid: true}
			}
			grid.Cells[i] = row
			return nil
		})
	}
	_ = eg.Wait()

	grid.BaseRow = nearest(grid.WACCs, wacc)
	grid.BaseCol = nearest(grid.Growths, growth)
	return grid
}

// nearest returns the index of the axis point closest to v, first on ties.
func nearest(axis []float64, v float64) int {
	best := 0
	for i := range axis {
		if math.Abs(axis[i]-v) < math.Abs(axis[best]-v) {
			best = i
		}
	}
	return best
}
