/*
DESCRIPTION
  sun.go provides sunrise, sunset and day length calculations for a given
  calendar date and geographic position. The calculations follow Paul
  Schlyter's sunriset algorithm, which is accurate to within a minute or two
  for latitudes below the polar circles.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sun computes the times of sunrise and sunset and the length of the
// day for a date and position on the earth.
package sun

import (
	"fmt"
	"math"
	"time"
)

// Status describes whether the sun crosses the horizon on a given day.
type Status int

// Possible statuses. The values match the sunriset convention.
const (
	PerpetualNight Status = -1 // Sun never rises above the horizon.
	Normal         Status = 0
	PerpetualDay   Status = 1 // Sun never sets below the horizon.
)

func (s Status) String() string {
	switch s {
	case Normal:
		return "normal"
	case PerpetualDay:
		return "perpetual day"
	case PerpetualNight:
		return "perpetual night"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Horizon selects the solar altitude that counts as sunrise and sunset.
type Horizon int

const (
	// HorizonSunrise is the conventional sunrise; the sun's upper limb touches
	// the horizon, allowing 35 arc minutes for atmospheric refraction.
	HorizonSunrise Horizon = iota

	// HorizonCivil is civil twilight; the sun's centre is 6 degrees below the
	// horizon.
	HorizonCivil
)

// ParseHorizon returns the Horizon named by s.
func ParseHorizon(s string) (Horizon, error) {
	switch s {
	case "sunrise", "":
		return HorizonSunrise, nil
	case "civil":
		return HorizonCivil, nil
	default:
		return 0, fmt.Errorf("unknown horizon %q", s)
	}
}

func (h Horizon) String() string {
	if h == HorizonCivil {
		return "civil"
	}
	return "sunrise"
}

// altitude returns the altitude in degrees and whether it applies to the
// upper limb of the sun's disc rather than its centre.
func (h Horizon) altitude() (float64, bool) {
	if h == HorizonCivil {
		return -6.0, false
	}
	return -35.0 / 60.0, true
}

// Event holds the sun's behaviour for one UTC calendar day.
type Event struct {
	Status    Status
	Sunrise   time.Time // UTC.
	Sunset    time.Time // UTC.
	DayLength float64   // Hours.
}

// Provider produces the sun Event for the UTC calendar date of t.
type Provider interface {
	Event(t time.Time, lon, lat float64) Event
}

// Calculator is a Provider using the sunriset algorithm.
type Calculator struct {
	Horizon Horizon
}

// Event implements Provider.
func (c Calculator) Event(t time.Time, lon, lat float64) Event { return At(t, lon, lat, c.Horizon) }

// At computes the Event for the UTC calendar date of t at the given longitude
// and latitude (degrees, east and north positive).
func At(t time.Time, lon, lat float64, h Horizon) Event {
	t = t.UTC()
	y, m, d := t.Date()
	status, rise, set := RiseSet(y, int(m), d, lon, lat, h)
	return Event{
		Status:    status,
		Sunrise:   hoursToTime(y, m, d, rise),
		Sunset:    hoursToTime(y, m, d, set),
		DayLength: DayLength(y, int(m), d, lon, lat, h),
	}
}

// hoursToTime converts a fractional hour of the given UTC date into an
// absolute time, truncated to the minute. Values outside [0, 24) fall on the
// neighbouring days.
func hoursToTime(y int, m time.Month, d int, hours float64) time.Time {
	hour := int(hours)
	min := int((hours - float64(hour)) * 60)
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

// RiseSet returns the status of the day and the sunrise and sunset times in
// fractional hours UTC. For perpetual days and nights rise and set are both
// the time the sun is due south.
func RiseSet(year, month, day int, lon, lat float64, h Horizon) (Status, float64, float64) {
	altit, upperLimb := h.altitude()

	// Days since 2000 Jan 0.0, adjusted to local noon.
	d := daysSince2000(year, month, day) + 0.5 - lon/360.0

	sidtime := revolution(gmst0(d) + 180.0 + lon)
	ra, dec, r := raDec(d)

	// Time when the sun is at its highest point, in hours UTC.
	tsouth := 12.0 - rev180(sidtime-ra)/15.0

	if upperLimb {
		altit -= 0.2666 / r
	}

	cost := (sind(altit) - sind(lat)*sind(dec)) / (cosd(lat) * cosd(dec))
	var (
		status Status
		t      float64
	)
	switch {
	case cost >= 1.0:
		status, t = PerpetualNight, 0.0
	case cost <= -1.0:
		status, t = PerpetualDay, 12.0
	default:
		t = acosd(cost) / 15.0
	}
	return status, tsouth - t, tsouth + t
}

// DayLength returns the number of hours the sun is above the horizon on the
// given day; 0 for a perpetual night and 24 for a perpetual day.
func DayLength(year, month, day int, lon, lat float64, h Horizon) float64 {
	altit, upperLimb := h.altitude()
	d := daysSince2000(year, month, day) + 0.5 - lon/360.0

	oblEcl := 23.4393 - 3.563e-7*d
	slon, sr := sunPos(d)

	sinDecl := sind(oblEcl) * sind(slon)
	cosDecl := math.Sqrt(1.0 - sinDecl*sinDecl)

	if upperLimb {
		altit -= 0.2666 / sr
	}

	cost := (sind(altit) - sind(lat)*sinDecl) / (cosd(lat) * cosDecl)
	switch {
	case cost >= 1.0:
		return 0.0
	case cost <= -1.0:
		return 24.0
	default:
		return (2.0 / 15.0) * acosd(cost)
	}
}

// daysSince2000 uses integer division throughout; valid from 1901 to 2099.
func daysSince2000(y, m, d int) float64 {
	return float64(367*y - (7*(y+((m+9)/12)))/4 + (275*m)/9 + d - 730530)
}

// sunPos returns the sun's ecliptic longitude (degrees) and distance (AU).
func sunPos(d float64) (lon, r float64) {
	M := revolution(356.0470 + 0.9856002585*d) // Mean anomaly.
	w := 282.9404 + 4.70935e-5*d              // Longitude of perihelion.
	e := 0.016709 - 1.151e-9*d                // Eccentricity.

	E := M + e*radToDeg*sind(M)*(1.0+e*cosd(M)) // Eccentric anomaly.
	x := cosd(E) - e
	y := math.Sqrt(1.0-e*e) * sind(E)
	r = math.Sqrt(x*x + y*y)
	v := atan2d(y, x)
	lon = v + w
	if lon >= 360.0 {
		lon -= 360.0
	}
	return lon, r
}

// raDec returns the sun's right ascension and declination (degrees) and
// distance (AU).
func raDec(d float64) (ra, dec, r float64) {
	lon, r := sunPos(d)

	x := r * cosd(lon)
	y := r * sind(lon)

	oblEcl := 23.4393 - 3.563e-7*d
	z := y * sind(oblEcl)
	y = y * cosd(oblEcl)

	ra = atan2d(y, x)
	dec = atan2d(z, math.Sqrt(x*x+y*y))
	return ra, dec, r
}

// gmst0 is the Greenwich mean sidereal time at 0h UT, in degrees.
func gmst0(d float64) float64 {
	return revolution((180.0 + 356.0470 + 282.9404) + (0.9856002585+4.70935e-5)*d)
}

const (
	radToDeg = 180.0 / math.Pi
	degToRad = math.Pi / 180.0
)

func sind(x float64) float64     { return math.Sin(x * degToRad) }
func cosd(x float64) float64     { return math.Cos(x * degToRad) }
func acosd(x float64) float64    { return radToDeg * math.Acos(x) }
func atan2d(y, x float64) float64 { return radToDeg * math.Atan2(y, x) }

// revolution reduces an angle to [0, 360).
func revolution(x float64) float64 { return x - 360.0*math.Floor(x/360.0) }

// rev180 reduces an angle to [-180, 180).
func rev180(x float64) float64 { return x - 360.0*math.Floor(x/360.0+0.5) }
