package core

import "math"

// DisplayGamma is the output gamma applied after tone mapping
const DisplayGamma = 2.2

// maxToneMapped is the largest float64 below 1
var maxToneMapped = math.Nextafter(1, 0)

// ToneMapChannel applies the Reinhard operator c/(c+1) followed by gamma
// correction. The result is in [0, 1); negative and NaN inputs map to 0.
func ToneMapChannel(c float64) float64 {
	if !(c > 0) {
		return 0
	}
	if math.IsInf(c, 1) {
		return maxToneMapped
	}
	// For very large c the ratio rounds to 1 in float64
	return min(math.Pow(c/(c+1), 1.0/DisplayGamma), maxToneMapped)
}

// ToneMap compresses an HDR color into displayable range per channel
func ToneMap(c Vec3) Vec3 {
	return Vec3{
		X: ToneMapChannel(c.X),
		Y: ToneMapChannel(c.Y),
		Z: ToneMapChannel(c.Z),
	}
}
