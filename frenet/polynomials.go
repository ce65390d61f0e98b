package frenet

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Quintic is a degree-5 polynomial in time satisfying full boundary conditions on
// position, velocity, and acceleration at t=0 and t=T. Used for lateral motion, where
// the terminal offset, velocity, and acceleration are all prescribed.
type Quintic struct {
	c [6]float64
	T float64
}

// NewQuintic solves the boundary-value problem x(0)=x0, x'(0)=v0, x''(0)=a0,
// x(T)=x1, x'(T)=v1, x''(T)=a1.
func NewQuintic(x0, v0, a0, x1, v1, a1, t float64) (*Quintic, error) {
	if t <= 0 {
		return nil, errors.Errorf("polynomial horizon must be positive, got %f", t)
	}
	q := &Quintic{T: t}
	q.c[0] = x0
	q.c[1] = v0
	q.c[2] = a0 / 2

	t2, t3, t4, t5 := t*t, t*t*t, t*t*t*t, t*t*t*t*t
	a := mat.NewDense(3, 3, []float64{
		t3, t4, t5,
		3 * t2, 4 * t3, 5 * t4,
		6 * t, 12 * t2, 20 * t3,
	})
	b := mat.NewVecDense(3, []float64{
		x1 - (q.c[0] + q.c[1]*t + q.c[2]*t2),
		v1 - (q.c[1] + 2*q.c[2]*t),
		a1 - 2*q.c[2],
	})
	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil, errors.Wrap(err, "solving quintic boundary conditions")
	}
	q.c[3], q.c[4], q.c[5] = sol.AtVec(0), sol.AtVec(1), sol.AtVec(2)
	return q, nil
}

// At returns the position at time t.
func (q *Quintic) At(t float64) float64 {
	return q.c[0] + q.c[1]*t + q.c[2]*t*t + q.c[3]*t*t*t + q.c[4]*t*t*t*t + q.c[5]*t*t*t*t*t
}

// Velocity returns the first derivative at time t.
func (q *Quintic) Velocity(t float64) float64 {
	return q.c[1] + 2*q.c[2]*t + 3*q.c[3]*t*t + 4*q.c[4]*t*t*t + 5*q.c[5]*t*t*t*t
}

// Acceleration returns the second derivative at time t.
func (q *Quintic) Acceleration(t float64) float64 {
	return 2*q.c[2] + 6*q.c[3]*t + 12*q.c[4]*t*t + 20*q.c[5]*t*t*t
}

// Jerk returns the third derivative at time t.
func (q *Quintic) Jerk(t float64) float64 {
	return 6*q.c[3] + 24*q.c[4]*t + 60*q.c[5]*t*t
}

// Quartic is a degree-4 polynomial in time satisfying start conditions on position,
// velocity, and acceleration plus terminal velocity and acceleration, leaving the
// terminal position free. Used for longitudinal motion toward a target speed.
type Quartic struct {
	c [5]float64
	T float64
}

// NewQuartic solves x(0)=x0, x'(0)=v0, x''(0)=a0, x'(T)=v1, x''(T)=a1.
func NewQuartic(x0, v0, a0, v1, a1, t float64) (*Quartic, error) {
	if t <= 0 {
		return nil, errors.Errorf("polynomial horizon must be positive, got %f", t)
	}
	q := &Quartic{T: t}
	q.c[0] = x0
	q.c[1] = v0
	q.c[2] = a0 / 2

	t2, t3 := t*t, t*t*t
	a := mat.NewDense(2, 2, []float64{
		3 * t2, 4 * t3,
		6 * t, 12 * t2,
	})
	b := mat.NewVecDense(2, []float64{
		v1 - (q.c[1] + 2*q.c[2]*t),
		a1 - 2*q.c[2],
	})
	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil, errors.Wrap(err, "solving quartic boundary conditions")
	}
	q.c[3], q.c[4] = sol.AtVec(0), sol.AtVec(1)
	return q, nil
}

// At returns the position at time t.
func (q *Quartic) At(t float64) float64 {
	return q.c[0] + q.c[1]*t + q.c[2]*t*t + q.c[3]*t*t*t + q.c[4]*t*t*t*t
}

// Velocity returns the first derivative at time t.
func (q *Quartic) Velocity(t float64) float64 {
	return q.c[1] + 2*q.c[2]*t + 3*q.c[3]*t*t + 4*q.c[4]*t*t*t
}

// Acceleration returns the second derivative at time t.
func (q *Quartic) Acceleration(t float64) float64 {
	return 2*q.c[2] + 6*q.c[3]*t + 12*q.c[4]*t*t
}

// Jerk returns the third derivative at time t.
func (q *Quartic) Jerk(t float64) float64 {
	return 6*q.c[3] + 24*q.c[4]*t
}
