package tplib

import (
	"math"
	"sync"

	"github.com/paulmach/orb"
)

const webMercatorEarthRadius = 20037508.34

// Transformer converts points between declared coordinate reference
// systems. Callers never observe internal state: Transform is a pure
// function of its three arguments even though an implementation may cache
// parsed CRS definitions behind the scenes.
type Transformer interface {
	Transform(pt orb.Point, source, target string) (orb.Point, error)
}

// knownCRS is the small set of CRS identifiers this module understands
// without an external projection library. Anything else round-trips only
// when source equals target.
var knownCRS = map[string]bool{
	"EPSG:4326": true,
	"EPSG:3857": true,
	"WGS84":     true,
}

// defaultTransformer is a Transformer that knows how to convert between
// WGS84 geographic coordinates and Web Mercator, and treats any other pair
// of equal CRS names as an identity transform. Each validated CRS pair is
// recorded in a sync.Map, but nothing reads that record back, so it has no
// effect on any result.
type defaultTransformer struct {
	cache sync.Map // map[[2]string]bool -> validity
}

// NewTransformer returns the module's built-in Transformer.
func NewTransformer() Transformer {
	return &defaultTransformer{}
}

func (t *defaultTransformer) Transform(pt orb.Point, source, target string) (orb.Point, error) {
	if source == target {
		return pt, nil
	}
	if !knownCRS[source] {
		return orb.Point{}, newErr(ErrInvalidCrs, "unknown source crs "+source)
	}
	if !knownCRS[target] {
		return orb.Point{}, newErr(ErrInvalidCrs, "unknown target crs "+target)
	}
	t.cache.Store([2]string{source, target}, true)

	switch {
	case source == "EPSG:3857" && (target == "EPSG:4326" || target == "WGS84"):
		lon, lat := epsg3857To4326(pt[0], pt[1])
		return orb.Point{lon, lat}, nil
	case (source == "EPSG:4326" || source == "WGS84") && target == "EPSG:3857":
		x, y := epsg4326To3857(pt[0], pt[1])
		return orb.Point{x, y}, nil
	case (source == "EPSG:4326" || source == "WGS84") && (target == "EPSG:4326" || target == "WGS84"):
		return pt, nil
	default:
		return orb.Point{}, newErr(ErrTransformFailed, "no transform path from "+source+" to "+target)
	}
}

func epsg3857To4326(x, y float64) (lon, lat float64) {
	lon = x * 180 / webMercatorEarthRadius
	lat = math.Atan(math.Exp(y*math.Pi/webMercatorEarthRadius))*360/math.Pi - 90
	return lon, lat
}

func epsg4326To3857(lon, lat float64) (x, y float64) {
	x = lon * webMercatorEarthRadius / 180
	y = math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180)
	y = y * webMercatorEarthRadius / 180
	return x, y
}
