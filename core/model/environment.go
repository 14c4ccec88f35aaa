package model

// Wind describes wind conditions as a speed and the compass direction the
// wind blows from.
type Wind struct {
	SpeedMS    float64
	HeadingDeg float64
}

// EnvironmentSample holds the ambient conditions for one (segment, time)
// query. Samples are produced on demand by the environment oracle and are
// never mutated afterwards.
type EnvironmentSample struct {
	SegmentIndex  int
	ElapsedS      float64 // seconds since race start
	IrradianceWM2 float64 // global horizontal irradiance
	Wind          Wind
	AmbientC      float64
}
