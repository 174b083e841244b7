// Package demo builds a small order sheet on top of the reactor engine.
// The CLI's demo and serve commands use it as a self-contained, runnable
// consumer of the library.
package demo

import (
	"fmt"

	"github.com/vango-dev/reactor"
)

// FreeShippingThreshold is the order total at which the free-shipping
// flag cell switches to 1.
const FreeShippingThreshold = 100.0

// Sheet is an order-total spreadsheet on a Reactor[float64].
//
// Inputs: quantity, unit price, tax rate, and a flat discount. Computes:
// subtotal, tax, total (floored at zero), and a free-shipping flag that
// is 1 once the total reaches FreeShippingThreshold.
type Sheet struct {
	Reactor *reactor.Reactor[float64]

	Quantity  reactor.InputCellID
	UnitPrice reactor.InputCellID
	TaxRate   reactor.InputCellID
	Discount  reactor.InputCellID

	Subtotal     reactor.ComputeCellID
	Tax          reactor.ComputeCellID
	Total        reactor.ComputeCellID
	FreeShipping reactor.ComputeCellID

	labels map[reactor.CellID]string
}

// LabeledCell pairs a sheet cell with its human label.
type LabeledCell struct {
	Label string
	ID    reactor.CellID
}

// NewSheet builds a sheet with the given starting values. Options are
// passed through to the underlying Reactor.
func NewSheet(quantity, unitPrice, taxRate, discount float64, opts ...reactor.Option[float64]) (*Sheet, error) {
	r := reactor.New[float64](opts...)
	s := &Sheet{
		Reactor: r,
		labels:  make(map[reactor.CellID]string),
	}

	s.Quantity = r.CreateInput(quantity)
	s.UnitPrice = r.CreateInput(unitPrice)
	s.TaxRate = r.CreateInput(taxRate)
	s.Discount = r.CreateInput(discount)

	var err error
	s.Subtotal, err = r.CreateCompute([]reactor.CellID{s.Quantity, s.UnitPrice}, func(vs []float64) float64 {
		return vs[0] * vs[1]
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subtotal cell: %w", err)
	}

	s.Tax, err = r.CreateCompute([]reactor.CellID{s.Subtotal, s.TaxRate}, func(vs []float64) float64 {
		return vs[0] * vs[1]
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tax cell: %w", err)
	}

	s.Total, err = r.CreateCompute([]reactor.CellID{s.Subtotal, s.Tax, s.Discount}, func(vs []float64) float64 {
		total := vs[0] + vs[1] - vs[2]
		if total < 0 {
			return 0
		}
		return total
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create total cell: %w", err)
	}

	s.FreeShipping, err = r.CreateCompute([]reactor.CellID{s.Total}, func(vs []float64) float64 {
		if vs[0] >= FreeShippingThreshold {
			return 1
		}
		return 0
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create free-shipping cell: %w", err)
	}

	s.labels[s.Quantity] = "quantity"
	s.labels[s.UnitPrice] = "unit_price"
	s.labels[s.TaxRate] = "tax_rate"
	s.labels[s.Discount] = "discount"
	s.labels[s.Subtotal] = "subtotal"
	s.labels[s.Tax] = "tax"
	s.labels[s.Total] = "total"
	s.labels[s.FreeShipping] = "free_shipping"

	return s, nil
}

// Label returns the human label of a sheet cell, or "" for foreign IDs.
func (s *Sheet) Label(id reactor.CellID) string {
	return s.labels[id]
}

// Cells returns the sheet's cells in layout order: inputs first, then
// computes in dependency order.
func (s *Sheet) Cells() []LabeledCell {
	ids := []reactor.CellID{
		s.Quantity, s.UnitPrice, s.TaxRate, s.Discount,
		s.Subtotal, s.Tax, s.Total, s.FreeShipping,
	}
	out := make([]LabeledCell, len(ids))
	for i, id := range ids {
		out[i] = LabeledCell{Label: s.labels[id], ID: id}
	}
	return out
}

// Values evaluates every sheet cell and returns the results by label.
func (s *Sheet) Values() map[string]float64 {
	out := make(map[string]float64, len(s.labels))
	for _, lc := range s.Cells() {
		if v, ok := s.Reactor.Value(lc.ID); ok {
			out[lc.Label] = v
		}
	}
	return out
}
