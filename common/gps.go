package common

// GPSPrecision5 is the number of decimal degree places that tells individual houses apart,
// about 1.1 m of latitude. Points are printed to it.
const GPSPrecision5 = 5
