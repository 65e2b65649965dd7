package pattern

import "github.com/clairecas/raglan-api/internal/models"

// requiredMeasurements maps each supported jumper shape to the measurement
// fields its construction needs. A shape not in this map is rejected.
var requiredMeasurements = map[string][]string{
	models.ShapeTopDownRaglan: {"chestCircumference", "armLength", "bodyLength"},
	models.ShapeDropShoulder:  {"chestCircumference", "armLength", "bodyLength", "shoulderWidth"},
	models.ShapeBottomUp:      {"chestCircumference", "armLength", "bodyLength", "necklineToChest"},
}

func (in *saveInput) measurement(field string) *float64 {
	switch field {
	case "chestCircumference":
		return in.ChestCircumference
	case "armLength":
		return in.ArmLength
	case "armCircumference":
		return in.ArmCircumference
	case "bodyLength":
		return in.BodyLength
	case "necklineToChest":
		return in.NecklineToChest
	case "shoulderWidth":
		return in.ShoulderWidth
	}
	return nil
}

// validJumperData reports whether the declared shape is known and every
// measurement it requires is present and positive. The gauge has already
// been checked for presence; here it must also be positive.
func validJumperData(in *saveInput) bool {
	required, ok := requiredMeasurements[in.JumperShape]
	if !ok {
		return false
	}
	if *in.KnittingGauge <= 0 {
		return false
	}
	for _, field := range required {
		v := in.measurement(field)
		if v == nil || *v <= 0 {
			return false
		}
	}
	return true
}
