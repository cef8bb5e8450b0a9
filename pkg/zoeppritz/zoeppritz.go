// Package zoeppritz evaluates plane-wave reflection coefficients at a
// welded elastic interface in the weak-contrast (Aki-Richards) form,
// for PP and for PS converted waves. The incidence angle is fixed with
// ComputeConstants before evaluating layer contrasts.
package zoeppritz

import "math"

// Evaluator computes a reflection coefficient from elastic contrasts at
// an interface. ComputeConstants fixes the incidence angle; the angle
// dependent terms are cached so a reflection series over many layers
// reuses them.
type Evaluator interface {
	ComputeConstants(theta float64)
	GetReflection(diffVp, meanVp, diffRho, meanRho, diffVs, meanVs float64) float64
}

// PP evaluates the P-down, P-up reflection coefficient.
type PP struct {
	sin2 float64 // sin^2(theta)
	cos2 float64 // cos^2(theta)
}

// NewPP returns a PP evaluator at normal incidence.
func NewPP() *PP {
	p := &PP{}
	p.ComputeConstants(0)
	return p
}

// ComputeConstants fixes the P-wave incidence angle in radians.
func (p *PP) ComputeConstants(theta float64) {
	s := math.Sin(theta)
	c := math.Cos(theta)
	p.sin2 = s * s
	p.cos2 = c * c
}

// GetReflection returns the Aki-Richards PP coefficient
//
//	R = 1/2 (1 - 4 (vs/vp)^2 sin^2 t) dRho/rho
//	  + dVp / (2 vp cos^2 t)
//	  - 4 (vs/vp)^2 sin^2 t dVs/vs.
func (p *PP) GetReflection(diffVp, meanVp, diffRho, meanRho, diffVs, meanVs float64) float64 {
	r := meanVs / meanVp
	r2 := r * r
	refl := 0.5 * (1 - 4*r2*p.sin2) * diffRho / meanRho
	refl += diffVp / (2 * meanVp * p.cos2)
	refl -= 4 * r2 * p.sin2 * diffVs / meanVs
	return refl
}

// PS evaluates the P-down, S-up converted reflection coefficient.
type PS struct {
	sin  float64
	cos  float64
	sin2 float64
}

// NewPS returns a PS evaluator at normal incidence.
func NewPS() *PS {
	p := &PS{}
	p.ComputeConstants(0)
	return p
}

// ComputeConstants fixes the P-wave incidence angle in radians.
func (p *PS) ComputeConstants(theta float64) {
	p.sin = math.Sin(theta)
	p.cos = math.Cos(theta)
	p.sin2 = p.sin * p.sin
}

// GetReflection returns the Aki-Richards PS coefficient
//
//	R = -sin t / (2 cos f) [ (1 - 2 sin^2 f + 2 r cos t cos f) dRho/rho
//	                       - (4 sin^2 f - 4 r cos t cos f) dVs/vs ]
//
// with r = vs/vp and the shear angle f from Snell's law,
// sin f = r sin t. At normal incidence the converted reflection
// vanishes; diffVp and meanVp do not enter.
func (p *PS) GetReflection(diffVp, meanVp, diffRho, meanRho, diffVs, meanVs float64) float64 {
	r := meanVs / meanVp
	sinPhi := r * p.sin
	if sinPhi >= 1 {
		return 0
	}
	cosPhi := math.Sqrt(1 - sinPhi*sinPhi)

	rhoTerm := (1 - 2*sinPhi*sinPhi + 2*r*p.cos*cosPhi) * diffRho / meanRho
	vsTerm := (4*sinPhi*sinPhi - 4*r*p.cos*cosPhi) * diffVs / meanVs
	return -p.sin / (2 * cosPhi) * (rhoTerm - vsTerm)
}
