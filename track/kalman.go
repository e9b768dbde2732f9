package track

import (
	"gonum.org/v1/gonum/mat"
)

// kalmanFilter is the per-track estimator: a discrete constant-
// acceleration model over the state vector [x, y, vx, vy]. The
// acceleration bias (AccelX, AccelY) enters through the control term,
// and the process noise Q is the standard white-acceleration form
// scaled by ProcessNoise².
//
// Predict is called once per frame regardless of whether a measurement
// exists; Correct folds in a real detection only when one was matched.
// The predict-always / correct-conditionally split is what lets a
// track coast through occlusion with plausible velocity-driven motion
// instead of snapping to a zero position.
type kalmanFilter struct {
	f *mat.Dense    // State transition (4x4)
	b *mat.Dense    // Control input model (4x2)
	h *mat.Dense    // Measurement model (2x4)
	q *mat.Dense    // Process noise covariance (4x4)
	r *mat.Dense    // Measurement noise covariance (2x2)
	u *mat.VecDense // Acceleration bias (2)

	x *mat.VecDense // State estimate [x, y, vx, vy]
	p *mat.Dense    // Estimate covariance (4x4)
}

func newKalmanFilter(cfg KalmanConfig, initial Point) *kalmanFilter {
	dt := cfg.Dt

	f := mat.NewDense(4, 4, []float64{
		1, 0, dt, 0,
		0, 1, 0, dt,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})

	b := mat.NewDense(4, 2, []float64{
		dt * dt / 2, 0,
		0, dt * dt / 2,
		dt, 0,
		0, dt,
	})

	h := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
	})

	// White-acceleration process noise, scaled by the squared noise
	// magnitude.
	sa2 := cfg.ProcessNoise * cfg.ProcessNoise
	dt2 := dt * dt
	dt3 := dt2 * dt
	dt4 := dt3 * dt
	q := mat.NewDense(4, 4, []float64{
		dt4 / 4 * sa2, 0, dt3 / 2 * sa2, 0,
		0, dt4 / 4 * sa2, 0, dt3 / 2 * sa2,
		dt3 / 2 * sa2, 0, dt2 * sa2, 0,
		0, dt3 / 2 * sa2, 0, dt2 * sa2,
	})

	r := mat.NewDense(2, 2, []float64{
		cfg.MeasNoiseX * cfg.MeasNoiseX, 0,
		0, cfg.MeasNoiseY * cfg.MeasNoiseY,
	})

	p := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		p.Set(i, i, 1)
	}

	return &kalmanFilter{
		f: f,
		b: b,
		h: h,
		q: q,
		r: r,
		u: mat.NewVecDense(2, []float64{cfg.AccelX, cfg.AccelY}),
		x: mat.NewVecDense(4, []float64{initial.X, initial.Y, 0, 0}),
		p: p,
	}
}

// Predict advances the state and covariance one sampling interval:
// x' = F·x + B·u, P' = F·P·Fᵀ + Q.
func (k *kalmanFilter) Predict() Point {
	var fx, bu mat.VecDense
	fx.MulVec(k.f, k.x)
	bu.MulVec(k.b, k.u)
	k.x.AddVec(&fx, &bu)

	var fp, fpft mat.Dense
	fp.Mul(k.f, k.p)
	fpft.Mul(&fp, k.f.T())
	k.p.Add(&fpft, k.q)

	return k.Position()
}

// Correct applies the innovation/gain/update step against a real
// measurement. When hasMeasurement is false the filter is left at its
// predicted state, dead reckoning through the missed frame, and the
// predicted position is returned.
func (k *kalmanFilter) Correct(z Point, hasMeasurement bool) Point {
	if !hasMeasurement {
		return k.Position()
	}

	// Innovation covariance S = H·P·Hᵀ + R.
	var hp, s mat.Dense
	hp.Mul(k.h, k.p)
	s.Mul(&hp, k.h.T())
	s.Add(&s, k.r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		// Singular innovation covariance: skip the update rather than
		// propagate NaNs into the state.
		return k.Position()
	}

	// Gain K = P·Hᵀ·S⁻¹.
	var pht, gain mat.Dense
	pht.Mul(k.p, k.h.T())
	gain.Mul(&pht, &sInv)

	// Residual y = z − H·x.
	var hx mat.VecDense
	hx.MulVec(k.h, k.x)
	residual := mat.NewVecDense(2, []float64{z.X - hx.AtVec(0), z.Y - hx.AtVec(1)})

	var corr mat.VecDense
	corr.MulVec(&gain, residual)
	k.x.AddVec(k.x, &corr)

	// P' = (I − K·H)·P.
	var kh mat.Dense
	kh.Mul(&gain, k.h)
	ikh := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		ikh.Set(i, i, 1)
	}
	ikh.Sub(ikh, &kh)

	var newP mat.Dense
	newP.Mul(ikh, k.p)
	k.p.Copy(&newP)

	return k.Position()
}

// Position returns the current position estimate.
func (k *kalmanFilter) Position() Point {
	return Point{X: k.x.AtVec(0), Y: k.x.AtVec(1)}
}

// Velocity returns the current velocity estimate.
func (k *kalmanFilter) Velocity() (vx, vy float64) {
	return k.x.AtVec(2), k.x.AtVec(3)
}
