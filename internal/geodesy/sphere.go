package geodesy

import (
	"math"

	"github.com/paulmach/orb"
)

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

// greatCircleFraction returns the point at fraction f along the great
// circle from a to b.
func greatCircleFraction(a, b orb.Point, f float64) orb.Point {
	if f <= 0 {
		return a
	}
	if f >= 1 {
		return b
	}
	phi1, lam1 := rad(a.Lat()), rad(a.Lon())
	phi2, lam2 := rad(b.Lat()), rad(b.Lon())
	sinHalfPhi := math.Sin((phi2 - phi1) / 2)
	sinHalfLam := math.Sin((lam2 - lam1) / 2)
	h := sinHalfPhi*sinHalfPhi + math.Cos(phi1)*math.Cos(phi2)*sinHalfLam*sinHalfLam
	d := 2 * math.Asin(math.Sqrt(h))
	if d == 0 {
		return a
	}
	A := math.Sin((1-f)*d) / math.Sin(d)
	B := math.Sin(f*d) / math.Sin(d)
	x := A*math.Cos(phi1)*math.Cos(lam1) + B*math.Cos(phi2)*math.Cos(lam2)
	y := A*math.Cos(phi1)*math.Sin(lam1) + B*math.Cos(phi2)*math.Sin(lam2)
	z := A*math.Sin(phi1) + B*math.Sin(phi2)
	return orb.Point{deg(math.Atan2(y, x)), deg(math.Atan2(z, math.Hypot(x, y)))}
}

// rhumbInverse returns the loxodrome distance in meters and constant
// bearing in degrees from a to b.
func rhumbInverse(a, b orb.Point) (float64, float64) {
	phi1, phi2 := rad(a.Lat()), rad(b.Lat())
	dPhi := phi2 - phi1
	dLam := rad(b.Lon() - a.Lon())
	if math.Abs(dLam) > math.Pi {
		if dLam > 0 {
			dLam = -(2*math.Pi - dLam)
		} else {
			dLam = 2*math.Pi + dLam
		}
	}
	dPsi := math.Log(math.Tan(math.Pi/4+phi2/2) / math.Tan(math.Pi/4+phi1/2))
	q := math.Cos(phi1)
	if math.Abs(dPsi) > 1e-12 {
		q = dPhi / dPsi
	}
	dist := math.Sqrt(dPhi*dPhi+q*q*dLam*dLam) * orb.EarthRadius
	return dist, normAzimuth(deg(math.Atan2(dLam, dPsi)))
}

// rhumbDestination travels meters along a constant bearing from p.
func rhumbDestination(p orb.Point, bearing, meters float64) orb.Point {
	delta := meters / orb.EarthRadius
	phi1, lam1 := rad(p.Lat()), rad(p.Lon())
	theta := rad(bearing)
	dPhi := delta * math.Cos(theta)
	phi2 := phi1 + dPhi
	if math.Abs(phi2) > math.Pi/2 {
		if phi2 > 0 {
			phi2 = math.Pi - phi2
		} else {
			phi2 = -math.Pi - phi2
		}
	}
	dPsi := math.Log(math.Tan(math.Pi/4+phi2/2) / math.Tan(math.Pi/4+phi1/2))
	q := math.Cos(phi1)
	if math.Abs(dPsi) > 1e-12 {
		q = dPhi / dPsi
	}
	lam2 := lam1 + delta*math.Sin(theta)/q
	return orb.Point{normLon(deg(lam2)), deg(phi2)}
}
