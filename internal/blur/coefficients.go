package blur

import "math"

// Coefficients returns the recursive filter coefficients for one axis.
// A sigma of zero yields (1, 1), which leaves the gain correction untouched.
func Coefficients(sigma float64, steps int) (lambda, dnu float64) {
	if sigma <= 0 {
		return 1, 1
	}
	lambda = (sigma * sigma) / (2 * float64(steps))
	dnu = (1 + 2*lambda - math.Sqrt(1+4*lambda)) / (2 * lambda)
	return lambda, dnu
}

// PostScale is the scalar that cancels the gain accumulated by the forward and
// backward sweeps of both axes.
func PostScale(sigmaX, sigmaY float64, steps int) float64 {
	lambdaX, dnuX := Coefficients(sigmaX, steps)
	lambdaY, dnuY := Coefficients(sigmaY, steps)
	return math.Pow(math.Sqrt(dnuX*dnuY)/math.Sqrt(lambdaX*lambdaY), float64(2*steps))
}
