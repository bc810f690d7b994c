package common

import (
	"path"
	"reflect"
	"runtime"
)

// ReflectFunctionName returns the fully-qualifed name of a function.
// eg. "github.com/rotblauer/trkgeo/common.GeoDistance"
func ReflectFunctionName(i interface{}) string {
	return runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
}

// DistanceFuncName is the short name of fn, eg. "common.GeoDistanceS2", for logs.
func DistanceFuncName(fn DistanceFunc) string {
	if fn == nil {
		return "<nil>"
	}
	return path.Base(ReflectFunctionName(fn))
}
