// Package geo synthesizes stable pseudo-coordinates for airport codes.
//
// There is no real airport coordinate table in this system.  To feed
// the weather service something deterministic, an airport code is
// hashed and mapped into continental-US bounding ranges.  The result
// is stable per code but geographically meaningless, in particular
// for non-US codes.  Do not use these values for anything but the
// weather lookup seed.
package geo

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// Continental-US bounding ranges the hash is mapped into.
const (
	LatMin = 24.5
	LatMax = 49.4
	LonMin = -125.0
	LonMax = -66.0
)

// SynthesizeCoords derives a deterministic (latitude, longitude) pair
// from an airport code.  The SHA-256 digest of the code's UTF-8 bytes
// is split into two big-endian uint64s, each reduced modulo 10000 and
// mapped linearly into the bounding ranges, rounded to 4 decimals.
func SynthesizeCoords(airportCode string) (lat, lon float64) {
	sum := sha256.Sum256([]byte(airportCode))
	a := binary.BigEndian.Uint64(sum[0:8]) % 10000
	b := binary.BigEndian.Uint64(sum[8:16]) % 10000

	lat = round4(LatMin + float64(a)/10000*(LatMax-LatMin))
	lon = round4(LonMin + float64(b)/10000*(LonMax-LonMin))
	return lat, lon
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
