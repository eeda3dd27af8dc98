package spectroscopy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// QuadraticSurface is a bivariate quadratic z(x, y) fitted by least squares:
// z = c0 + c1*x + c2*y + c3*x*y + c4*x^2 + c5*y^2.
type QuadraticSurface struct {
	Coeffs [6]float64
}

// Eval evaluates the surface at (x, y).
func (q QuadraticSurface) Eval(x, y float64) float64 {
	c := q.Coeffs
	return c[0] + c[1]*x + c[2]*y + c[3]*x*y + c[4]*x*x + c[5]*y*y
}

// FitQuadraticSurface fits a quadratic surface to scattered (x, y, z)
// triples by QR least squares. This is a standalone numerical utility; it is
// not part of the spectral reduction control flow. At least six points are
// required and the design matrix must have full rank (six points on a line
// will not do).
func FitQuadraticSurface(x, y, z []float64) (QuadraticSurface, error) {
	n := len(x)
	if len(y) != n || len(z) != n {
		return QuadraticSurface{}, fmt.Errorf("coordinate lengths differ: %d, %d, %d", n, len(y), len(z))
	}
	if n < 6 {
		return QuadraticSurface{}, fmt.Errorf("need at least 6 points for a quadratic surface, got %d", n)
	}

	a := mat.NewDense(n, 6, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		a.Set(i, 0, 1)
		a.Set(i, 1, x[i])
		a.Set(i, 2, y[i])
		a.Set(i, 3, x[i]*y[i])
		a.Set(i, 4, x[i]*x[i])
		a.Set(i, 5, y[i]*y[i])
		b.SetVec(i, z[i])
	}

	var qr mat.QR
	qr.Factorize(a)

	var coeffs mat.VecDense
	if err := qr.SolveVecTo(&coeffs, false, b); err != nil {
		return QuadraticSurface{}, fmt.Errorf("surface solve: %w", err)
	}

	var q QuadraticSurface
	for i := range q.Coeffs {
		q.Coeffs[i] = coeffs.AtVec(i)
	}
	return q, nil
}
